// Package session exposes a visit counter kept in the signed session cookie.
package session

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/portico/internal/app/system/sessions"
	"go.uber.org/zap"
)

const visitsKey = "visits"

// Handler holds the session store.
type Handler struct {
	Store *sessions.Store
	Log   *zap.Logger
}

func NewHandler(store *sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}

type visitsResponse struct {
	Visits int  `json:"visits"`
	New    bool `json:"new"`
}

// ServeVisits handles GET /session. Each call increments the counter; a
// restart of the process resets it because the signing key changes.
func (h *Handler) ServeVisits(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Get(r)
	if err != nil {
		h.Log.Error("session load failed", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	visits, _ := sess.Values[visitsKey].(int)
	visits++
	sess.Values[visitsKey] = visits

	if err := h.Store.Save(w, r, sess); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(visitsResponse{Visits: visits, New: sess.IsNew}); err != nil {
		h.Log.Warn("session: encode failed", zap.Error(err))
	}
}
