package model

import "time"

// User is the authenticated console user returned by /api/whoami.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// Organization is the top level of the resource hierarchy. Every other
// resource is reached through an organization.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups domains and message streams within an organization.
type Project struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stream is a message/email stream within a project. Kind is either
// "transactional" or "broadcast".
type Stream struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single email submitted through a stream.
type Message struct {
	ID          string    `json:"id"`
	StreamID    string    `json:"stream_id"`
	Subject     string    `json:"subject"`
	From        string    `json:"from"`
	To          []string  `json:"to"`
	Status      string    `json:"status"`
	Labels      []string  `json:"labels,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DNSRecord is one record the customer must publish for domain verification.
type DNSRecord struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
}

// Domain is a sending domain with its DNS/DKIM/SPF/DMARC verification state.
type Domain struct {
	ID            string      `json:"id"`
	ProjectID     string      `json:"project_id"`
	Name          string      `json:"name"`
	Verified      bool        `json:"verified"`
	SPFVerified   bool        `json:"spf_verified"`
	DKIMVerified  bool        `json:"dkim_verified"`
	DMARCVerified bool        `json:"dmarc_verified"`
	Records       []DNSRecord `json:"records,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Credential is an SMTP credential scoped to a stream. The password is only
// present in the creation response and never stored.
type Credential struct {
	ID         string     `json:"id"`
	StreamID   string     `json:"stream_id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Password   string     `json:"password,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// APIKey is an organization-scoped REST API key.
type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"created_at"`
}

// Quota tracks monthly sending usage against the plan limit.
type Quota struct {
	MonthlyLimit int64 `json:"monthly_limit"`
	Used         int64 `json:"used"`
}

// Subscription is the organization's billing state.
type Subscription struct {
	Plan     string     `json:"plan"`
	Status   string     `json:"status"`
	Quota    Quota      `json:"quota"`
	RenewsAt *time.Time `json:"renews_at,omitempty"`
}

// ServerConfig is platform-wide configuration delivered to the console
// (feature flags, limits, support links).
type ServerConfig struct {
	Features     map[string]bool `json:"features,omitempty"`
	MaxProjects  int             `json:"max_projects"`
	MaxStreams   int             `json:"max_streams"`
	SupportEmail string          `json:"support_email"`
}
