// Package api exposes the detection engine over HTTP: frame ingestion,
// live object queries, session statistics, and rendered activity charts.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/db"
	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/monitoring"
	"github.com/SmitBdangar/Morph1x/internal/report"
	"github.com/SmitBdangar/Morph1x/internal/timeutil"
	"github.com/SmitBdangar/Morph1x/internal/units"
)

// ANSI escape codes for the request log
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// ServerConfig carries the reporting-side settings the HTTP layer applies
// on top of the engine's own configuration.
type ServerConfig struct {
	Units          string           // target speed units for converted output
	MetersPerPixel float64          // scene scale; <= 0 leaves speeds in pixels
	AlertCooldown  time.Duration    // per-class alert window; <= 0 uses the default
	Clock          timeutil.Clock   // nil uses the real clock
	Exporter       *report.Exporter // nil disables report exports
}

// Server routes HTTP traffic to one engine instance. The database and
// recorder are optional; endpoints that need them answer 503 when absent.
type Server struct {
	engine         *detect.Engine
	monitor        *detect.AlertMonitor
	db             *db.DB
	exporter       *report.Exporter
	units          string
	metersPerPixel float64
	clock          timeutil.Clock
	startedAt      time.Time

	mu       sync.Mutex
	recorder *detect.Recorder
}

// NewServer wires the engine, optional storage, and an alert monitor into
// an HTTP-facing server.
func NewServer(engine *detect.Engine, database *db.DB, recorder *detect.Recorder, config ServerConfig) *Server {
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if config.Units == "" {
		config.Units = units.MPS
	}
	return &Server{
		engine:         engine,
		monitor:        detect.NewAlertMonitor(config.AlertCooldown, clock),
		db:             database,
		exporter:       config.Exporter,
		recorder:       recorder,
		units:          config.Units,
		metersPerPixel: config.MetersPerPixel,
		clock:          clock,
		startedAt:      clock.Now(),
	}
}

// activeRecorder returns the current session recorder, nil when recording
// is disabled.
func (s *Server) activeRecorder() *detect.Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder
}

// CloseRecording ends the active recording session, if any. Safe to call
// when recording is disabled.
func (s *Server) CloseRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder == nil {
		return nil
	}
	err := s.recorder.Close()
	s.recorder = nil
	return err
}

// rotateSession closes the current recording session and opens a fresh
// one under the engine's current configuration. Returns the new session
// id, or "" when recording is disabled.
func (s *Server) rotateSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder == nil {
		return "", nil
	}
	if err := s.recorder.Close(); err != nil {
		monitoring.Logf("close session %s: %v", s.recorder.SessionID(), err)
	}

	recorder, err := detect.NewRecorder(s.db.DB, s.engine.Config(), s.units, s.metersPerPixel, s.clock)
	if err != nil {
		s.recorder = nil
		return "", err
	}
	s.recorder = recorder
	return recorder.SessionID(), nil
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for this server.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/detect", s.handleDetect)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/objects", s.handleObjects)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/exports", s.handleExports)
	mux.HandleFunc("/api/exports/", s.handleExportDownload)
	mux.HandleFunc("/charts/activity", s.handleActivityChart)
	mux.HandleFunc("/charts/speeds", s.handleSpeedsChart)
	return mux
}
