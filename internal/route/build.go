package route

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/remails/console/model"
)

// Build is the inverse of Match: it resolves the dotted route name to its
// template chain, substitutes path variables from params, and appends any
// remaining parameters as a query string. An unknown route name returns an
// error (a configuration mistake the navigation controller recovers from);
// a missing required path parameter panics, since that indicates a caller
// bug rather than a recoverable runtime condition.
func (t *Table) Build(name string, params map[string]string) (model.FullRouterState, error) {
	chain, err := t.resolve(name)
	if err != nil {
		return model.FullRouterState{}, model.NewRouteNotFoundError(err.Error())
	}

	consumed := make(map[string]bool)
	var segs []string
	for _, r := range chain {
		for _, tseg := range r.segments() {
			if !isPlaceholder(tseg) {
				segs = append(segs, tseg)
				continue
			}
			key := placeholderName(tseg)
			val, ok := params[key]
			if !ok || val == "" {
				panic(fmt.Sprintf(
					"route: missing required path parameter %q building route %q", key, name,
				))
			}
			segs = append(segs, url.PathEscape(val))
			consumed[key] = true
		}
	}

	fullPath := "/" + strings.Join(segs, "/")

	// Leftover parameters become the query string; Encode sorts keys, which
	// keeps built paths canonical.
	query := url.Values{}
	for k, v := range params {
		if !consumed[k] {
			query.Set(k, v)
		}
	}
	if len(query) > 0 {
		fullPath += "?" + query.Encode()
	}

	// Return the canonical, de-duplicated parameter set alongside the path.
	outParams := make(map[string]string, len(params))
	for k, v := range params {
		outParams[k] = v
	}

	return model.FullRouterState{
		RouterState: model.RouterState{Name: name, Params: outParams},
		FullPath:    fullPath,
	}, nil
}
