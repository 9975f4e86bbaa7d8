package transport

import (
	"net/http"
	"strconv"

	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/session"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

// stateResponse is the full application state plus the history position.
type stateResponse struct {
	State   state.ApplicationState `json:"state"`
	History historyInfo            `json:"history"`
}

// handleState returns the session's current application state.
func (h *handlers) handleState(w http.ResponseWriter, r *http.Request) {
	app, err := h.ensureApp(r.Context(), "")
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeState(w, app)
}

func (h *handlers) writeState(w http.ResponseWriter, app *session.App) {
	entries, index := app.History.Snapshot()
	WriteJSON(w, http.StatusOK, stateResponse{
		State:   app.Store.State(),
		History: historyInfo{Length: len(entries), Index: index},
	})
}

// routeInfo describes one route of the table for shell introspection.
type routeInfo struct {
	Name     string   `json:"name"`
	Template string   `json:"template"`
	Params   []string `json:"params,omitempty"`
}

// handleRoutes lists every route the console knows, with its path template
// and required path parameters.
func (h *handlers) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	names := h.deps.Table.Names()
	routes := make([]routeInfo, 0, len(names))
	for _, name := range names {
		template, err := h.deps.Table.Template(name)
		if err != nil {
			WriteError(w, err)
			return
		}
		params, err := h.deps.Table.PathParams(name)
		if err != nil {
			WriteError(w, err)
			return
		}
		routes = append(routes, routeInfo{Name: name, Template: template, Params: params})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

// handleJournal lists the caller's navigation trail, most recent first.
func (h *handlers) handleJournal(w http.ResponseWriter, r *http.Request) {
	if h.deps.Journal == nil {
		WriteError(w, model.NewNotFoundError("navigation journal is not enabled"))
		return
	}
	sess := model.MustSession(r.Context())

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.deps.Journal.List(r.Context(), journal.Filters{
		SessionID: sess.ID,
		Result:    r.URL.Query().Get("result"),
		Limit:     limit,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
