package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	// Zone names come from the browser; slim images ship without a zone database.
	_ "time/tzdata"

	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/presentation"
)

// SnapshotSource serves the seed a page or session starts from.
type SnapshotSource interface {
	Current(ctx context.Context) (*models.Snapshot, error)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_, _ = w.Write(body)
	}
}

func writeError(w http.ResponseWriter, status int, kind models.ErrorKind, detail string) {
	writeJSON(w, status, models.ErrorBody{Kind: kind, Detail: detail})
}

// formatterFor picks the locale from Accept-Language and the zone from ?tz=.
func formatterFor(r *http.Request) *presentation.Formatter {
	tag := presentation.DetectLocale(r.Header.Get("Accept-Language"))
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return presentation.NewFormatter(tag, loc)
}
