package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/remails/console/model"
)

// MessageFilter carries the non-hierarchical query parameters of a message
// listing. Zero values are omitted from the request.
type MessageFilter struct {
	Limit  int
	Status string
	Before string
	Labels string
	Query  string
}

func (f MessageFilter) values() url.Values {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Before != "" {
		q.Set("before", f.Before)
	}
	if f.Labels != "" {
		q.Set("labels", f.Labels)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	return q
}

// ListOrganizations returns the organizations the user belongs to.
func (c *Client) ListOrganizations(ctx context.Context, sess *model.Session) ([]model.Organization, error) {
	var orgs []model.Organization
	err := c.get(ctx, sess, "/api/organizations", nil, &orgs)
	return orgs, err
}

// GetOrganization returns one organization by id.
func (c *Client) GetOrganization(ctx context.Context, sess *model.Session, orgID string) (model.Organization, error) {
	var org model.Organization
	err := c.get(ctx, sess, "/api/organizations/"+url.PathEscape(orgID), nil, &org)
	return org, err
}

// ListProjects returns an organization's projects.
func (c *Client) ListProjects(ctx context.Context, sess *model.Session, orgID string) ([]model.Project, error) {
	var projects []model.Project
	err := c.get(ctx, sess, orgPath(orgID)+"/projects", nil, &projects)
	return projects, err
}

// GetProject returns one project by id.
func (c *Client) GetProject(ctx context.Context, sess *model.Session, orgID, projID string) (model.Project, error) {
	var project model.Project
	err := c.get(ctx, sess, projPath(orgID, projID), nil, &project)
	return project, err
}

// ListStreams returns a project's message streams.
func (c *Client) ListStreams(ctx context.Context, sess *model.Session, orgID, projID string) ([]model.Stream, error) {
	var streams []model.Stream
	err := c.get(ctx, sess, projPath(orgID, projID)+"/streams", nil, &streams)
	return streams, err
}

// GetStream returns one stream by id.
func (c *Client) GetStream(ctx context.Context, sess *model.Session, orgID, projID, streamID string) (model.Stream, error) {
	var stream model.Stream
	err := c.get(ctx, sess, streamPath(orgID, projID, streamID), nil, &stream)
	return stream, err
}

// ListMessages returns a stream's messages, newest first, filtered by f.
func (c *Client) ListMessages(ctx context.Context, sess *model.Session, orgID, projID, streamID string, f MessageFilter) ([]model.Message, error) {
	var messages []model.Message
	err := c.get(ctx, sess, streamPath(orgID, projID, streamID)+"/messages", f.values(), &messages)
	return messages, err
}

// GetMessage returns one message by id.
func (c *Client) GetMessage(ctx context.Context, sess *model.Session, orgID, projID, streamID, messageID string) (model.Message, error) {
	var message model.Message
	err := c.get(ctx, sess, streamPath(orgID, projID, streamID)+"/messages/"+url.PathEscape(messageID), nil, &message)
	return message, err
}

// ListDomains returns a project's sending domains.
func (c *Client) ListDomains(ctx context.Context, sess *model.Session, orgID, projID string) ([]model.Domain, error) {
	var domains []model.Domain
	err := c.get(ctx, sess, projPath(orgID, projID)+"/domains", nil, &domains)
	return domains, err
}

// GetDomain returns one domain with its DNS record verification state.
func (c *Client) GetDomain(ctx context.Context, sess *model.Session, orgID, projID, domainID string) (model.Domain, error) {
	var domain model.Domain
	err := c.get(ctx, sess, domainPath(orgID, projID, domainID), nil, &domain)
	return domain, err
}

// CreateDomain registers a new sending domain on the project.
func (c *Client) CreateDomain(ctx context.Context, sess *model.Session, orgID, projID, name string) (model.Domain, error) {
	var domain model.Domain
	body := map[string]string{"name": name}
	err := c.post(ctx, sess, projPath(orgID, projID)+"/domains", body, &domain)
	return domain, err
}

// VerifyDomain asks the backend to re-check the domain's DNS records.
func (c *Client) VerifyDomain(ctx context.Context, sess *model.Session, orgID, projID, domainID string) (model.Domain, error) {
	var domain model.Domain
	err := c.post(ctx, sess, domainPath(orgID, projID, domainID)+"/verify", nil, &domain)
	return domain, err
}

// DeleteDomain removes a sending domain.
func (c *Client) DeleteDomain(ctx context.Context, sess *model.Session, orgID, projID, domainID string) error {
	return c.delete(ctx, sess, domainPath(orgID, projID, domainID))
}

// ListCredentials returns a stream's SMTP credentials.
func (c *Client) ListCredentials(ctx context.Context, sess *model.Session, orgID, projID, streamID string) ([]model.Credential, error) {
	var creds []model.Credential
	err := c.get(ctx, sess, streamPath(orgID, projID, streamID)+"/credentials", nil, &creds)
	return creds, err
}

// CreateCredential mints a new SMTP credential; the response is the only
// place the password ever appears.
func (c *Client) CreateCredential(ctx context.Context, sess *model.Session, orgID, projID, streamID, name string) (model.Credential, error) {
	var cred model.Credential
	body := map[string]string{"name": name}
	err := c.post(ctx, sess, streamPath(orgID, projID, streamID)+"/credentials", body, &cred)
	return cred, err
}

// DeleteCredential revokes an SMTP credential.
func (c *Client) DeleteCredential(ctx context.Context, sess *model.Session, orgID, projID, streamID, credID string) error {
	return c.delete(ctx, sess, streamPath(orgID, projID, streamID)+"/credentials/"+url.PathEscape(credID))
}

// ListAPIKeys returns an organization's REST API keys.
func (c *Client) ListAPIKeys(ctx context.Context, sess *model.Session, orgID string) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := c.get(ctx, sess, orgPath(orgID)+"/api-keys", nil, &keys)
	return keys, err
}

// CreateAPIKey mints a new API key.
func (c *Client) CreateAPIKey(ctx context.Context, sess *model.Session, orgID, name string) (model.APIKey, error) {
	var key model.APIKey
	body := map[string]string{"name": name}
	err := c.post(ctx, sess, orgPath(orgID)+"/api-keys", body, &key)
	return key, err
}

// DeleteAPIKey revokes an API key.
func (c *Client) DeleteAPIKey(ctx context.Context, sess *model.Session, orgID, keyID string) error {
	return c.delete(ctx, sess, orgPath(orgID)+"/api-keys/"+url.PathEscape(keyID))
}

// GetSubscription returns the organization's billing state and quota usage.
func (c *Client) GetSubscription(ctx context.Context, sess *model.Session, orgID string) (model.Subscription, error) {
	var sub model.Subscription
	err := c.get(ctx, sess, orgPath(orgID)+"/subscription", nil, &sub)
	return sub, err
}

func orgPath(orgID string) string {
	return "/api/organizations/" + url.PathEscape(orgID)
}

func projPath(orgID, projID string) string {
	return orgPath(orgID) + "/projects/" + url.PathEscape(projID)
}

func streamPath(orgID, projID, streamID string) string {
	return projPath(orgID, projID) + "/streams/" + url.PathEscape(streamID)
}

func domainPath(orgID, projID, domainID string) string {
	return projPath(orgID, projID) + "/domains/" + url.PathEscape(domainID)
}
