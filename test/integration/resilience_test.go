package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/route"
)

func TestResilience_BackendOutageFailsTransition(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-out1")
	h.StartSession("s-out1", token, "/")

	h.Backend.FailWith(502)
	committed := h.Navigate("s-out1", token, route.NameBilling, map[string]string{"org_id": "acme"})
	assert.Equal(t, route.NameNotFound, committed.Name,
		"a failed pipeline commits the not-found route instead of erroring")

	h.Backend.Recover()
	recovered := h.Navigate("s-out1", token, route.NameBilling, map[string]string{"org_id": "acme"})
	assert.Equal(t, route.NameBilling, recovered.Name)
}

func TestResilience_CircuitBreakerShedsLoad(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-cb")
	h.StartSession("s-cb", token, "/")

	h.Backend.FailWith(502)

	// Five consecutive upstream failures open the breaker; further
	// transitions fail fast without touching the platform.
	for i := 0; i < 5; i++ {
		h.Navigate("s-cb", token, route.NameBilling, map[string]string{"org_id": "acme"})
	}
	hitsWhenOpen := h.Backend.Hits("/api/whoami")

	for i := 0; i < 3; i++ {
		committed := h.Navigate("s-cb", token, route.NameBilling, map[string]string{"org_id": "acme"})
		assert.Equal(t, route.NameNotFound, committed.Name)
	}
	assert.Equal(t, hitsWhenOpen, h.Backend.Hits("/api/whoami"),
		"an open breaker short-circuits upstream calls")
}

func TestResilience_JournalRecordsTheTrail(t *testing.T) {
	h := NewTestHarness(t, WithJournal())
	token := h.Login("s-j")
	h.StartSession("s-j", token, "/")
	h.Navigate("s-j", token, route.NameBilling, map[string]string{"org_id": "acme"})

	h.Backend.FailWith(503)
	h.Navigate("s-j", token, route.NameAPIKeys, map[string]string{"org_id": "acme"})
	h.Backend.Recover()

	entries, err := h.Journal.List(context.Background(), journal.Filters{SessionID: "s-j"})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "failed", entries[0].Result, "newest first: the outage transition")
	assert.Equal(t, route.NameNotFound, entries[0].ToRoute)
	assert.Equal(t, route.NameAPIKeys, entries[0].Requested)

	assert.Equal(t, "committed", entries[1].Result)
	assert.Equal(t, route.NameBilling, entries[1].ToRoute)

	assert.Equal(t, "redirected", entries[2].Result, "home bounced to the default org")
	assert.Equal(t, route.NameOrg, entries[2].ToRoute)
}
