package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/remails/console/internal/session"
	"github.com/remails/console/internal/state"
	"github.com/remails/console/model"
)

// handleSessionStart creates (or resumes) the navigation machinery for the
// caller's session and performs the initial transition for the location the
// browser was opened at.
func (h *handlers) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	app, err := h.ensureApp(r.Context(), req.Location)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.saveSnapshot(r.Context(), app)
	h.writeState(w, app)
}

// handleSessionEnd tears down the session's app and resume snapshot.
func (h *handlers) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	sess := model.MustSession(r.Context())
	h.deps.Registry.Drop(sess.ID)
	if h.deps.Resume != nil {
		if err := h.deps.Resume.Drop(r.Context(), sess.ID); err != nil {
			h.logger.Warn("resume cache drop failed", zap.Error(err))
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// handleLogin exchanges credentials for a platform token on behalf of the
// browser shell.
func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password are required")
		return
	}

	result, err := h.deps.API.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleLoginTOTP completes a two-factor login.
func (h *handlers) handleLoginTOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TwoFactorToken string `json:"two_factor_token"`
		Code           string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.TwoFactorToken == "" || req.Code == "" {
		WriteBadRequest(w, "two_factor_token and code are required")
		return
	}

	result, err := h.deps.API.LoginTOTP(r.Context(), req.TwoFactorToken, req.Code)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleLogout revokes the platform token and resets the session's state.
func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := model.MustSession(r.Context())

	if sess.Token != "" {
		if err := h.deps.API.Logout(r.Context(), sess); err != nil {
			// Token revocation is best effort; the session still ends.
			h.logger.Warn("logout against platform failed", zap.Error(err))
		}
	}

	if app, ok := h.deps.Registry.Peek(sess.ID); ok {
		app.Store.Dispatch(state.ResetSession{})
	}
	h.deps.Registry.Drop(sess.ID)
	if h.deps.Resume != nil {
		if err := h.deps.Resume.Drop(r.Context(), sess.ID); err != nil {
			h.logger.Warn("resume cache drop failed", zap.Error(err))
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ensureApp returns the live app for the caller's session, creating and
// starting one if needed. A newly created app first tries the resume cache;
// a hit restores the history stack and replays the resumed route through
// the normal pipeline.
func (h *handlers) ensureApp(ctx context.Context, location string) (*session.App, error) {
	sess := model.MustSession(ctx)

	app, created := h.deps.Registry.Get(sess.ID, location)
	if !created {
		return app, nil
	}

	if h.deps.Resume != nil {
		snap, found, err := h.deps.Resume.Load(ctx, sess.ID)
		if err != nil {
			h.logger.Warn("resume cache load failed", zap.Error(err))
		}
		if found {
			if h.deps.Metrics != nil {
				h.deps.Metrics.RecordResumeCacheHit()
				h.deps.Metrics.RecordSessionResumed()
			}
			app.History.Restore(snap.History, snap.Index)
			entry := model.HistoryEntry{FullPath: snap.FullPath, RouterState: snap.Route}
			if _, err := app.Controller.HandlePop(ctx, &entry); err != nil {
				return nil, err
			}
			return app, nil
		}
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordResumeCacheMiss()
		}
	}

	if _, err := app.Controller.Start(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// saveSnapshot persists the session's navigation position, best effort.
func (h *handlers) saveSnapshot(ctx context.Context, app *session.App) {
	if h.deps.Resume == nil {
		return
	}
	sess := model.MustSession(ctx)

	entries, index := app.History.Snapshot()
	st := app.Store.State()

	fullPath := ""
	if cur, ok := app.History.Current(); ok {
		fullPath = cur.FullPath
	}

	snap := session.Snapshot{
		SessionID: sess.ID,
		FullPath:  fullPath,
		Route:     st.Route,
		History:   entries,
		Index:     index,
		SavedAt:   time.Now().UTC(),
	}
	if err := h.deps.Resume.Save(ctx, snap, h.deps.Config.Sessions.Resume.DefaultTTL); err != nil {
		h.logger.Warn("resume cache save failed", zap.Error(err))
	}
}
