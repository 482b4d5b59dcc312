// Package httpapi exposes the catalog, the interactive view and exports over HTTP.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"xsplot/internal/catalog"
	"xsplot/internal/chart"
	"xsplot/internal/export"
	"xsplot/internal/observability"
	"xsplot/internal/session"
	"xsplot/pkg/nuclide"
)

const prefix = "/api/v1"

// Handler routes /api/v1 requests plus /metrics and /healthz.
type Handler struct {
	Catalog  *catalog.Catalog
	Session  *session.Service
	Exports  export.Scheduler
	Metrics  http.Handler
	Logger   *zap.Logger
	PageSize int
}

// NewHandler constructs a handler over a catalog and a session.
func NewHandler(cat *catalog.Catalog, svc *session.Service, logger *zap.Logger) *Handler {
	return &Handler{Catalog: cat, Session: svc, Logger: observability.OrNop(logger), PageSize: catalog.DefaultPageSize}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil || h.Session == nil {
		writeError(w, http.StatusInternalServerError, "catalog not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": h.Catalog.Len()})
	case path == "/metrics":
		if h.Metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.Metrics.ServeHTTP(w, r)
	case path == prefix+"/catalog":
		h.only(w, r, http.MethodGet, h.handleCatalog)
	case path == prefix+"/view":
		h.only(w, r, http.MethodGet, h.handleView)
	case path == prefix+"/view/intents":
		h.only(w, r, http.MethodPost, h.handleIntent)
	case path == prefix+"/plot":
		h.only(w, r, http.MethodGet, h.handlePlot)
	case path == prefix+"/plot.png":
		h.only(w, r, http.MethodGet, h.handlePlotPNG)
	case path == prefix+"/export":
		h.only(w, r, http.MethodGet, h.handleExport)
	case strings.HasPrefix(path, prefix+"/exports"):
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, path)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) only(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	next(w, r)
}

func (h *Handler) logger() *zap.Logger { return observability.OrNop(h.Logger) }

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var state nuclide.SearchState
	for _, field := range nuclide.Fields {
		state = state.With(field, query.Get(string(field)))
	}
	page := 0
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = n
	}
	result := catalog.Paginate(h.Catalog.Search(state), h.PageSize, page)
	writeJSON(w, http.StatusOK, map[string]any{"search": state, "page": result})
}

func (h *Handler) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"view": h.Session.View().Snapshot()})
}

func (h *Handler) handleIntent(w http.ResponseWriter, r *http.Request) {
	var intent session.Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid intent payload")
		return
	}
	snap, err := h.Session.Dispatch(r.Context(), intent)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"view": snap})
	case errors.Is(err, session.ErrInvalidIntent):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger().Error("dispatch intent", zap.String("type", string(intent.Type)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handlePlot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.View().Figure())
}

func (h *Handler) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	opts := chart.RenderOptions{}
	for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, name+" must be a positive integer")
			return
		}
		*dst = n
	}
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, h.Session.View().Figure(), opts); err != nil {
		h.logger().Error("render plot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render plot failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// handleExport serves the current selection as a download.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(negotiateFormat(r))
	if err != nil {
		writeError(w, http.StatusNotAcceptable, err.Error())
		return
	}
	view := h.Session.View()
	var buf bytes.Buffer
	var contentType string
	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(&buf, view.ExportRequest().Entries)
		contentType = "text/csv"
	case export.FormatPNG:
		err = chart.RenderPNG(&buf, view.Figure(), chart.RenderOptions{})
		contentType = "image/png"
	default:
		var data []byte
		data, err = export.Marshal(view.ExportDocument())
		buf.Write(data)
		contentType = export.ContentType
	}
	if err != nil {
		h.logger().Error("build export", zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeAttachment(w, contentType, attachmentName(format), buf.Bytes())
}

func negotiateFormat(r *http.Request) string {
	if wanted := r.URL.Query().Get("format"); wanted != "" {
		return wanted
	}
	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		return string(export.FormatCSV)
	}
	return string(export.FormatJSON)
}

func attachmentName(format export.Format) string {
	return strings.TrimSuffix(export.FileName, ".json") + "." + string(format)
}

type exportRequest struct {
	Formats []string `json:"formats"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, path string) {
	if path == prefix+"/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r)
		return
	}

	rest, ok := strings.CutPrefix(path, prefix+"/exports/")
	if !ok || rest == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, rawFormat, download := strings.Cut(rest, "/")
	if !download {
		job, found := h.Exports.Get(id)
		if !found {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"export": job})
		return
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	artifact, rc, err := h.Exports.Open(r.Context(), id, format)
	if err != nil {
		if errors.Is(err, export.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "export artifact not found")
			return
		}
		h.logger().Error("open export artifact", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "open export artifact failed")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName(format)))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger().Warn("stream export artifact", zap.String("key", artifact.Key), zap.Error(err))
	}
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid export request payload")
		return
	}
	formats := make([]export.Format, 0, len(req.Formats))
	for _, f := range req.Formats {
		format, err := export.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		formats = append(formats, format)
	}
	job, err := h.Exports.Enqueue(r.Context(), h.Session.View().ExportRequest(formats...))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"export": job})
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
