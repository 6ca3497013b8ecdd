package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/presentation"
	"brewdash/backend/services/dashboard-service/internal/reconcile"
	"brewdash/backend/services/dashboard-service/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Locale string
	Frame  session.Frame
}

type errorPageData struct {
	Title  string
	Detail string
}

// PageHandler renders the dashboard page from the current seed.
type PageHandler struct {
	snapshots SnapshotSource
	logger    *zap.Logger
}

// NewPageHandler returns handler.
func NewPageHandler(snapshots SnapshotSource, logger *zap.Logger) *PageHandler {
	return &PageHandler{snapshots: snapshots, logger: logger}
}

// Index handles GET /. A seed that cannot be loaded or is empty aborts generation.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Current(r.Context())
	if err != nil {
		h.logger.Error("page generation failed", zap.Error(err))
		h.renderError(w, "Telemetry is unavailable", err)
		return
	}

	core, err := reconcile.New(snap.Series)
	if err != nil {
		h.logger.Error("page generation failed", zap.String("hydrometer_id", snap.HydrometerID), zap.Error(err))
		h.renderError(w, "No telemetry recorded yet", err)
		return
	}

	formatter := formatterFor(r)
	frame := session.BuildFrame(core, formatter, presentation.DefaultSort, core.Range().Start)
	h.render(w, http.StatusOK, "index.html", pageData{Locale: formatter.Locale(), Frame: frame})
}

func (h *PageHandler) renderError(w http.ResponseWriter, title string, err error) {
	detail := "The telemetry service could not be reached."
	if errors.Is(err, models.ErrEmptySeed) {
		detail = "The active fermentation has no readings to show."
	}
	h.render(w, http.StatusInternalServerError, "error.html", errorPageData{Title: title, Detail: detail})
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template render failed", zap.String("template", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.ErrorKindInternal, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
