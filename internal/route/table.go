package route

// Route names referenced from the navigation controller and loaders. These
// are the top-level names; nested names are dotted (e.g.
// "projects.project.streams.stream").
const (
	NameHome     = "home"
	NameLogin    = "login"
	NameNotFound = "notfound"
	NameOrg      = "org"
	NameProjects = "projects"
	NameBilling  = "billing"
	NameAPIKeys  = "apikeys"
	NameSettings = "settings"
)

// Dotted names of the nested routes.
const (
	NameProject         = NameProjects + ".project"
	NameProjectSettings = NameProject + ".settings"
	NameStreams         = NameProject + ".streams"
	NameStream          = NameStreams + ".stream"
	NameMessages        = NameStream + ".messages"
	NameMessage         = NameMessages + ".message"
	NameCredentials     = NameStream + ".credentials"
	NameCredential      = NameCredentials + ".credential"
	NameDomains         = NameProject + ".domains"
	NameDomain          = NameDomains + ".domain"
)

// DefaultTable returns the console's route table. Declared order matters:
// matching is left-biased, so literal top-level routes are declared before
// the {org_id} placeholder routes they would otherwise shadow.
func DefaultTable() *Table {
	return MustNewTable([]Route{
		{Name: NameHome, Path: ""},
		{Name: NameLogin, Path: "login"},
		{Name: NameNotFound, Path: "not-found"},
		{Name: NameProjects, Path: "{org_id}/projects", Children: []Route{
			{Name: "project", Path: "{proj_id}", Children: []Route{
				{Name: "streams", Path: "streams", Children: []Route{
					{Name: "stream", Path: "{stream_id}", Children: []Route{
						{Name: "messages", Path: "messages", Children: []Route{
							{Name: "message", Path: "{message_id}"},
						}},
						{Name: "credentials", Path: "credentials", Children: []Route{
							{Name: "credential", Path: "{credential_id}"},
						}},
					}},
				}},
				{Name: "domains", Path: "domains", Children: []Route{
					{Name: "domain", Path: "{domain_id}"},
				}},
				{Name: "settings", Path: "settings"},
			}},
		}},
		{Name: NameBilling, Path: "{org_id}/billing"},
		{Name: NameAPIKeys, Path: "{org_id}/api-keys"},
		{Name: NameSettings, Path: "{org_id}/settings"},
		{Name: NameOrg, Path: "{org_id}"},
	})
}
