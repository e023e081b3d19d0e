package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/httputil"
	"github.com/SmitBdangar/Morph1x/internal/report"
)

// ExportRequest is the body of POST /api/export. An empty session targets
// the active recording session; an empty format defaults to json.
type ExportRequest struct {
	Session  string `json:"session,omitempty"`
	Filename string `json:"filename,omitempty"`
	Format   string `json:"format,omitempty"`
}

// ExportsResponse lists the files available for download.
type ExportsResponse struct {
	Count   int                  `json:"count"`
	Dir     string               `json:"dir"`
	Exports []report.ExportEntry `json:"exports"`
}

// handleExport writes a session report to the export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.exporter == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "exports not configured")
		return
	}
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "track DB not configured")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body")
		return
	}

	format := req.Format
	if format == "" {
		format = report.FormatJSON
	}
	switch format {
	case report.FormatJSON, report.FormatText, report.FormatHistogram:
	default:
		httputil.BadRequest(w, fmt.Sprintf("unknown export format %q", req.Format))
		return
	}

	sessionID := req.Session
	if sessionID == "" {
		if recorder := s.activeRecorder(); recorder != nil {
			sessionID = recorder.SessionID()
		}
	}
	if sessionID == "" {
		httputil.NotFound(w, "no active session")
		return
	}
	if _, err := detect.GetSession(s.db.DB, sessionID); err != nil {
		httputil.NotFound(w, "session not found")
		return
	}

	result, err := s.exporter.ExportReport(s.db.DB, sessionID, req.Filename, format, s.units)
	if err != nil {
		if errors.Is(err, report.ErrNoSpeeds) {
			httputil.NotFound(w, "no speed observations for session")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("export failed: %v", err))
		return
	}

	httputil.WriteJSONOK(w, result)
}

// handleExports lists the export directory.
func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.exporter == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "exports not configured")
		return
	}

	entries, err := s.exporter.List()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list exports: %v", err))
		return
	}
	if entries == nil {
		entries = []report.ExportEntry{}
	}

	httputil.WriteJSONOK(w, ExportsResponse{
		Count:   len(entries),
		Dir:     s.exporter.Dir(),
		Exports: entries,
	})
}

// handleExportDownload serves one previously exported file by name.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.exporter == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "exports not configured")
		return
	}

	name := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/exports/"))
	if name == "" {
		httputil.BadRequest(w, "filename is required")
		return
	}
	if strings.Contains(name, "/") {
		httputil.BadRequest(w, "invalid filename")
		return
	}

	data, contentType, err := s.exporter.Read(name)
	if err != nil {
		if os.IsNotExist(err) {
			httputil.NotFound(w, "export not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to read export: %v", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.Write(data)
}
