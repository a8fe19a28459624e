package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/gratten/lapgpx/internal/gpx"
	"github.com/gratten/lapgpx/internal/models"
	"github.com/gratten/lapgpx/internal/utils"
	"github.com/gratten/lapgpx/internal/xmlstream"
)

// Store is what the HTTP API reads from.
type Store interface {
	gpx.Store
	ListActivities(ctx context.Context) ([]models.Activity, error)
}

type Handler struct {
	store  Store
	opts   gpx.Options
	indent bool
	log    *zap.Logger
}

func New(store Store, opts gpx.Options, indent bool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, opts: opts, indent: indent, log: log}
}

// Routes registers the API on a new mux wrapped in the logging/recover middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthHandler)
	mux.HandleFunc("GET /api/activities", h.ActivitiesHandler)
	mux.HandleFunc("GET /api/activities/{id}/gpx", h.ExportHandler)
	return h.withLoggingAndErrorHandling(mux)
}

// HealthHandler returns a simple status for liveness checks.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ActivitiesHandler lists stored activities.
func (h *Handler) ActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	activities, err := h.store.ListActivities(r.Context())
	if err != nil {
		h.logger(r).Error("list activities failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

// ExportHandler serves an activity as a GPX download. ?private=true adds the
// private extension fields.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid activity id", http.StatusBadRequest)
		return
	}
	opts := h.opts
	if private, err := strconv.ParseBool(r.URL.Query().Get("private")); err == nil {
		opts.PrivateExtensions = private
	}
	log := h.logger(r).With(zap.Int64("activity_id", id))
	opts.Logger = log

	var xmlOpts []xmlstream.Option
	if h.indent {
		xmlOpts = append(xmlOpts, xmlstream.WithIndent())
	}
	// Render fully before writing so a failed export never sends a partial document.
	var buf bytes.Buffer
	startTime, err := gpx.NewWriter(h.store, xmlstream.New(&buf, xmlOpts...), opts).Export(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Error("gpx export failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", utils.ExportFilename(opts.Prefix(), startTime)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("gpx response write failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
