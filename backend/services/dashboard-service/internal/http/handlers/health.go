package handlers

import "net/http"

// SessionCounter reports live websocket sessions.
type SessionCounter interface {
	Count() int
}

// NewHealthHandler returns the liveness probe.
func NewHealthHandler(sessions SessionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": sessions.Count(),
		})
	}
}
