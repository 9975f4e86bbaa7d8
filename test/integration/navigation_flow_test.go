package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remails/console/internal/route"
)

func TestNavigationFlow_DrillDownAndBack(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-flow")

	initial := h.StartSession("s-flow", token, "/")
	require.Equal(t, route.NameOrg, initial.State.Route.Name,
		"an authenticated session at / bounces to the default organization")
	require.Equal(t, "acme", initial.State.Route.Param("org_id"))
	assert.Equal(t, 1, initial.History.Length)

	streams := h.Navigate("s-flow", token, route.NameStreams, map[string]string{
		"org_id": "acme", "proj_id": "p1",
	})
	require.Equal(t, route.NameStreams, streams.Name)
	assert.Equal(t, "/acme/projects/p1/streams", streams.FullPath)
	assert.Equal(t, 2, streams.History.Length)

	messages := h.Navigate("s-flow", token, route.NameMessages, map[string]string{
		"org_id": "acme", "proj_id": "p1", "stream_id": "st1",
	})
	require.Equal(t, route.NameMessages, messages.Name)

	st := h.State("s-flow", token)
	require.Len(t, st.State.Messages, 2)
	assert.Equal(t, "m2", st.State.Messages[0].ID, "messages arrive newest first")

	back := h.Pop("s-flow", token, "back")
	require.Equal(t, route.NameStreams, back.Name)
	assert.Equal(t, 3, back.History.Length, "popping must not shrink the stack")
	assert.Equal(t, 1, back.History.Index)

	forward := h.Pop("s-flow", token, "forward")
	assert.Equal(t, route.NameMessages, forward.Name)
	assert.Equal(t, 2, forward.History.Index)
}

func TestNavigationFlow_MessageDetail(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-msg")
	h.StartSession("s-msg", token, "/")

	detail := h.Navigate("s-msg", token, route.NameMessage, map[string]string{
		"org_id": "acme", "proj_id": "p1", "stream_id": "st1", "message_id": "m2",
	})
	require.Equal(t, route.NameMessage, detail.Name)
	assert.Equal(t, "/acme/projects/p1/streams/st1/messages/m2", detail.FullPath)

	st := h.State("s-msg", token)
	require.NotNil(t, st.State.Message)
	assert.Equal(t, "Receipt #2", st.State.Message.Subject)
}

func TestNavigationFlow_DeepLink(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-deep")

	initial := h.StartSession("s-deep", token, "/acme/projects/p1/streams/st1/messages/m2")
	require.Equal(t, route.NameMessage, initial.State.Route.Name)
	require.NotNil(t, initial.State.Message)
	assert.Equal(t, "m2", initial.State.Message.ID)
	assert.Equal(t, 1, initial.History.Length, "a deep link seeds history with one entry")
}

func TestNavigationFlow_MessageStatusFilter(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-filter")
	h.StartSession("s-filter", token, "/")

	h.Navigate("s-filter", token, route.NameMessages, map[string]string{
		"org_id": "acme", "proj_id": "p1", "stream_id": "st1", "status": "bounced",
	})

	st := h.State("s-filter", token)
	require.Len(t, st.State.Messages, 1)
	assert.Equal(t, "m1", st.State.Messages[0].ID)
	assert.Equal(t, "bounced", st.State.Route.Param("status"),
		"filter params survive in the committed route")
}

func TestNavigationFlow_UnknownPathLandsOnNotFound(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-404")

	initial := h.StartSession("s-404", token, "/acme/bogus/whatever")
	assert.Equal(t, route.NameNotFound, initial.State.Route.Name)
}

func TestNavigationFlow_UnknownOrganizationFails(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-noorg")
	h.StartSession("s-noorg", token, "/")

	committed := h.Navigate("s-noorg", token, route.NameProjects, map[string]string{
		"org_id": "ghost",
	})
	assert.Equal(t, route.NameNotFound, committed.Name,
		"a hierarchy mismatch fails the transition onto not-found")
}

func TestNavigationFlow_BillingQuota(t *testing.T) {
	h := NewTestHarness(t)
	token := h.Login("s-bill")
	h.StartSession("s-bill", token, "/")

	committed := h.Navigate("s-bill", token, route.NameBilling, map[string]string{"org_id": "acme"})
	require.Equal(t, route.NameBilling, committed.Name)

	st := h.State("s-bill", token)
	require.NotNil(t, st.State.Subscription)
	assert.Equal(t, "pro", st.State.Subscription.Plan)
	assert.EqualValues(t, 4521, st.State.Subscription.Quota.Used)
}
