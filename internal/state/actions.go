// Package state holds the console's application state and the pure reducer
// that is the only way to change it. Actions form a closed sum type over a
// sealed interface, so adding an action is a compile-time exhaustiveness
// concern rather than a runtime string lookup.
package state

import "github.com/remails/console/model"

// Action is the sealed interface over all state transitions. Only types in
// this package implement it.
type Action interface {
	isAction()
}

// SetUser stores the authenticated user (nil clears it).
type SetUser struct{ User *model.User }

// SetServerConfig stores the platform configuration.
type SetServerConfig struct{ Config *model.ServerConfig }

// SetOrganizations replaces the organization collection wholesale.
type SetOrganizations struct{ Organizations []model.Organization }

// SelectOrganization stores the currently selected organization.
type SelectOrganization struct{ Organization *model.Organization }

// SetProjects replaces the project collection wholesale.
type SetProjects struct{ Projects []model.Project }

// SelectProject stores the currently selected project.
type SelectProject struct{ Project *model.Project }

// SetStreams replaces the stream collection wholesale.
type SetStreams struct{ Streams []model.Stream }

// SelectStream stores the currently selected stream.
type SelectStream struct{ Stream *model.Stream }

// SetMessages replaces the message collection wholesale.
type SetMessages struct{ Messages []model.Message }

// SelectMessage stores the currently selected message.
type SelectMessage struct{ Message *model.Message }

// SetDomains replaces the domain collection wholesale.
type SetDomains struct{ Domains []model.Domain }

// AddDomain appends one domain to the collection.
type AddDomain struct{ Domain model.Domain }

// RemoveDomain removes a domain from the collection by id.
type RemoveDomain struct{ ID string }

// SelectDomain stores the currently selected domain.
type SelectDomain struct{ Domain *model.Domain }

// SetCredentials replaces the SMTP credential collection wholesale.
type SetCredentials struct{ Credentials []model.Credential }

// AddCredential appends one credential to the collection.
type AddCredential struct{ Credential model.Credential }

// RemoveCredential removes a credential from the collection by id.
type RemoveCredential struct{ ID string }

// SetAPIKeys replaces the API key collection wholesale.
type SetAPIKeys struct{ Keys []model.APIKey }

// AddAPIKey appends one API key to the collection.
type AddAPIKey struct{ Key model.APIKey }

// RemoveAPIKey removes an API key from the collection by id.
type RemoveAPIKey struct{ ID string }

// SetSubscription stores the billing state of the selected organization.
type SetSubscription struct{ Subscription *model.Subscription }

// CommitRoute stores the committed router state after a navigation
// completes.
type CommitRoute struct{ Route model.RouterState }

// SetNextRoute stores the tentative navigation target before data loading
// starts, so the UI can show a loading indicator (nil clears it).
type SetNextRoute struct{ Next *model.FullRouterState }

// SetLoading toggles the global loading flag.
type SetLoading struct{ Loading bool }

// ResetSession clears everything except the committed route. Dispatched on
// logout and on session expiry.
type ResetSession struct{}

func (SetUser) isAction()            {}
func (SetServerConfig) isAction()    {}
func (SetOrganizations) isAction()   {}
func (SelectOrganization) isAction() {}
func (SetProjects) isAction()        {}
func (SelectProject) isAction()      {}
func (SetStreams) isAction()         {}
func (SelectStream) isAction()       {}
func (SetMessages) isAction()        {}
func (SelectMessage) isAction()      {}
func (SetDomains) isAction()         {}
func (AddDomain) isAction()          {}
func (RemoveDomain) isAction()       {}
func (SelectDomain) isAction()       {}
func (SetCredentials) isAction()     {}
func (AddCredential) isAction()      {}
func (RemoveCredential) isAction()   {}
func (SetAPIKeys) isAction()         {}
func (AddAPIKey) isAction()          {}
func (RemoveAPIKey) isAction()       {}
func (SetSubscription) isAction()    {}
func (CommitRoute) isAction()        {}
func (SetNextRoute) isAction()       {}
func (SetLoading) isAction()         {}
func (ResetSession) isAction()       {}
