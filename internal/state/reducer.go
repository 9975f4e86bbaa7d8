package state

import (
	"fmt"

	"github.com/remails/console/model"
)

// ApplicationState is the single source of truth for everything the console
// has fetched. A nil collection means "not yet loaded"; a non-nil empty one
// means "loaded, empty". Values are replaced, never mutated in place.
type ApplicationState struct {
	User          *model.User            `json:"user,omitempty"`
	Config        *model.ServerConfig    `json:"config,omitempty"`
	Organizations []model.Organization   `json:"organizations,omitempty"`
	Organization  *model.Organization    `json:"organization,omitempty"`
	Projects      []model.Project        `json:"projects,omitempty"`
	Project       *model.Project         `json:"project,omitempty"`
	Streams       []model.Stream         `json:"streams,omitempty"`
	Stream        *model.Stream          `json:"stream,omitempty"`
	Messages      []model.Message        `json:"messages,omitempty"`
	Message       *model.Message         `json:"message,omitempty"`
	Domains       []model.Domain         `json:"domains,omitempty"`
	Domain        *model.Domain          `json:"domain,omitempty"`
	Credentials   []model.Credential     `json:"credentials,omitempty"`
	APIKeys       []model.APIKey         `json:"api_keys,omitempty"`
	Subscription  *model.Subscription    `json:"subscription,omitempty"`
	Route         model.RouterState      `json:"route"`
	NextRoute     *model.FullRouterState `json:"next_route,omitempty"`
	Loading       bool                   `json:"loading"`
}

// Reduce applies one action to the state and returns the next state. It
// never mutates the incoming state or its collections; handlers that append
// or remove always produce new containers. An action type without a case
// here is a programmer error and panics.
func Reduce(s ApplicationState, action Action) ApplicationState {
	switch a := action.(type) {
	case SetUser:
		s.User = a.User
	case SetServerConfig:
		s.Config = a.Config
	case SetOrganizations:
		s.Organizations = a.Organizations
	case SelectOrganization:
		s.Organization = a.Organization
	case SetProjects:
		s.Projects = a.Projects
	case SelectProject:
		s.Project = a.Project
	case SetStreams:
		s.Streams = a.Streams
	case SelectStream:
		s.Stream = a.Stream
	case SetMessages:
		s.Messages = a.Messages
	case SelectMessage:
		s.Message = a.Message
	case SetDomains:
		s.Domains = a.Domains
	case AddDomain:
		s.Domains = appendCopy(s.Domains, a.Domain)
	case RemoveDomain:
		s.Domains = removeByID(s.Domains, a.ID, func(d model.Domain) string { return d.ID })
	case SelectDomain:
		s.Domain = a.Domain
	case SetCredentials:
		s.Credentials = a.Credentials
	case AddCredential:
		s.Credentials = appendCopy(s.Credentials, a.Credential)
	case RemoveCredential:
		s.Credentials = removeByID(s.Credentials, a.ID, func(c model.Credential) string { return c.ID })
	case SetAPIKeys:
		s.APIKeys = a.Keys
	case AddAPIKey:
		s.APIKeys = appendCopy(s.APIKeys, a.Key)
	case RemoveAPIKey:
		s.APIKeys = removeByID(s.APIKeys, a.ID, func(k model.APIKey) string { return k.ID })
	case SetSubscription:
		s.Subscription = a.Subscription
	case CommitRoute:
		s.Route = a.Route
	case SetNextRoute:
		s.NextRoute = a.Next
	case SetLoading:
		s.Loading = a.Loading
	case ResetSession:
		route := s.Route
		s = ApplicationState{Route: route}
	default:
		panic(fmt.Sprintf("state: unhandled action type %T", action))
	}
	return s
}

// appendCopy appends into a fresh container so the previous state's slice
// is never grown in place.
func appendCopy[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

// removeByID filters into a fresh container, dropping entries whose id
// matches.
func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}
