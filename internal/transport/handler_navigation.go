package transport

import (
	"encoding/json"
	"net/http"

	"github.com/remails/console/internal/session"
	"github.com/remails/console/model"
)

// handleNavigate requests a transition to a named route.
func (h *handlers) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string            `json:"name"`
		Params map[string]string `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		WriteBadRequest(w, "name is required")
		return
	}

	app, err := h.ensureApp(r.Context(), "")
	if err != nil {
		WriteError(w, err)
		return
	}

	committed, err := app.Controller.Navigate(r.Context(), req.Name, req.Params)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.saveSnapshot(r.Context(), app)
	writeNavigation(w, committed, app)
}

// handleLocation resolves a raw path-and-query and navigates to the result.
func (h *handlers) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Location == "" {
		WriteBadRequest(w, "location is required")
		return
	}

	app, err := h.ensureApp(r.Context(), "")
	if err != nil {
		WriteError(w, err)
		return
	}

	committed, err := app.Controller.NavigateToLocation(r.Context(), req.Location)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.saveSnapshot(r.Context(), app)
	writeNavigation(w, committed, app)
}

// handleHistoryPop moves the history cursor and replays the entry it lands
// on through the navigation pipeline.
func (h *handlers) handleHistoryPop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	app, err := h.ensureApp(r.Context(), "")
	if err != nil {
		WriteError(w, err)
		return
	}

	var entry model.HistoryEntry
	var moved bool
	switch req.Direction {
	case "back":
		entry, moved = app.History.Back()
	case "forward":
		entry, moved = app.History.Forward()
	default:
		WriteBadRequest(w, `direction must be "back" or "forward"`)
		return
	}

	var entryRef *model.HistoryEntry
	if moved {
		entryRef = &entry
	}
	committed, err := app.Controller.HandlePop(r.Context(), entryRef)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.saveSnapshot(r.Context(), app)
	writeNavigation(w, committed, app)
}

// navigationResponse is the committed result of a transition.
type navigationResponse struct {
	Name     string            `json:"name"`
	Params   map[string]string `json:"params"`
	FullPath string            `json:"full_path"`
	History  historyInfo       `json:"history"`
}

type historyInfo struct {
	Length int `json:"length"`
	Index  int `json:"index"`
}

func writeNavigation(w http.ResponseWriter, committed model.FullRouterState, app *session.App) {
	entries, index := app.History.Snapshot()
	WriteJSON(w, http.StatusOK, navigationResponse{
		Name:     committed.Name,
		Params:   committed.Params,
		FullPath: committed.FullPath,
		History:  historyInfo{Length: len(entries), Index: index},
	})
}
