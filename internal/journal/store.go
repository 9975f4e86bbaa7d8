// Package journal persists an audit trail of committed navigations. Each
// console session appends one entry per settled transition; operators query
// the trail when debugging "how did this user end up on that page" reports.
package journal

import (
	"context"
	"time"
)

// Entry is one committed navigation.
type Entry struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	FromRoute string        `json:"from_route"`
	Requested string        `json:"requested"`
	ToRoute   string        `json:"to_route"`
	FullPath  string        `json:"full_path"`
	Result    string        `json:"result"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
}

// Filters are optional filters for listing journal entries.
type Filters struct {
	SessionID string
	Result    string
	Limit     int
	Offset    int
}

// Store persists navigation journal entries.
type Store interface {
	// Append adds an entry to the trail. An empty ID is assigned by the
	// store.
	Append(ctx context.Context, e Entry) error

	// List returns entries matching the filters, most recent first.
	List(ctx context.Context, f Filters) ([]Entry, error)

	// HealthCheck verifies the store's backing connection.
	HealthCheck(ctx context.Context) error
}
