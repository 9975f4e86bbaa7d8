package route

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileRoute is the YAML shape of one route declaration.
type fileRoute struct {
	Name     string      `yaml:"name"`
	Path     string      `yaml:"path"`
	Children []fileRoute `yaml:"children"`
}

type tableFile struct {
	Routes []fileRoute `yaml:"routes"`
}

// LoadTable reads a route table from a YAML file. Declared order in the file
// is matching order. The loaded table goes through the same validation as a
// table declared in code.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("route: reading %s: %w", path, err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("route: parsing %s: %w", path, err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("route: %s declares no routes", path)
	}

	table, err := NewTable(convertRoutes(file.Routes))
	if err != nil {
		return nil, fmt.Errorf("route: %s: %w", path, err)
	}
	return table, nil
}

func convertRoutes(in []fileRoute) []Route {
	out := make([]Route, len(in))
	for i, fr := range in {
		out[i] = Route{
			Name:     fr.Name,
			Path:     fr.Path,
			Children: convertRoutes(fr.Children),
		}
	}
	return out
}
