package model

import (
	"context"
	"errors"
	"fmt"
)

// Session carries the identity and tracing information for one console
// session. It is immutable after construction and safe for concurrent reads.
type Session struct {
	// ID identifies the console session (one browser tab/shell instance).
	ID string
	// Token is the bearer token forwarded to the Remails API.
	Token string
	// CorrelationID ties all backend calls of one navigation together.
	CorrelationID string
}

// Validate checks that all mandatory fields are present.
func (s *Session) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, fmt.Errorf("ID is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

type sessionKey struct{}

// WithSession attaches a Session to the given context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the Session from the context, or returns nil if not
// present.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// MustSession extracts the Session from the context, panicking if it is not
// present. Safe to call in handlers that run behind the session middleware.
func MustSession(ctx context.Context) *Session {
	s := SessionFrom(ctx)
	if s == nil {
		panic("model: Session not found in context")
	}
	return s
}
