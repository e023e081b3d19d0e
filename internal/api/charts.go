package api

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/httputil"
	"github.com/SmitBdangar/Morph1x/internal/report"
)

// chartSession resolves the session a chart should draw: the query
// parameter when given, otherwise the active recording session.
func (s *Server) chartSession(r *http.Request) string {
	if session := r.URL.Query().Get("session"); session != "" {
		return session
	}
	if recorder := s.activeRecorder(); recorder != nil {
		return recorder.SessionID()
	}
	return ""
}

// handleActivityChart renders per-class observation counts over time as a
// line chart (HTML). Query params:
//   - session (optional; defaults to the active recording session)
//   - bucket (optional; bucket width in seconds, default 60)
func (s *Server) handleActivityChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "track DB not configured")
		return
	}

	sessionID := s.chartSession(r)
	if sessionID == "" {
		httputil.NotFound(w, "no active session")
		return
	}

	bucket := time.Minute
	if b := r.URL.Query().Get("bucket"); b != "" {
		seconds, err := strconv.Atoi(b)
		if err != nil || seconds < 1 {
			httputil.BadRequest(w, "invalid 'bucket' parameter")
			return
		}
		bucket = time.Duration(seconds) * time.Second
	}

	buckets, err := detect.SessionActivity(s.db.DB, sessionID, bucket)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load activity: %v", err))
		return
	}
	if len(buckets) == 0 {
		httputil.NotFound(w, "no observations for session")
		return
	}

	// One x position per bucket start, one series per class, zero-filled.
	var starts []int64
	startIndex := map[int64]int{}
	classSet := map[string]bool{}
	for _, b := range buckets {
		if _, ok := startIndex[b.BucketUnixNanos]; !ok {
			startIndex[b.BucketUnixNanos] = len(starts)
			starts = append(starts, b.BucketUnixNanos)
		}
		classSet[b.Class] = true
	}
	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	counts := make(map[string][]int64, len(classes))
	for _, class := range classes {
		counts[class] = make([]int64, len(starts))
	}
	for _, b := range buckets {
		counts[b.Class][startIndex[b.BucketUnixNanos]] = b.Count
	}

	xLabels := make([]string, len(starts))
	for i, start := range starts {
		xLabels[i] = time.Unix(0, start).UTC().Format("15:04:05")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Detection Activity", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Detection Activity", Subtitle: fmt.Sprintf("session=%s bucket=%s", sessionID, bucket)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Observations"}),
	)
	line.SetXAxis(xLabels)
	for _, class := range classes {
		data := make([]opts.LineData, len(starts))
		for i, count := range counts[class] {
			data[i] = opts.LineData{Value: count}
		}
		line.AddSeries(class, data)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSpeedsChart renders each track's speed timeline as scatter series
// (HTML). Query params:
//   - session (optional; defaults to the active recording session)
//   - limit (optional; max tracks plotted, default 20)
func (s *Server) handleSpeedsChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "track DB not configured")
		return
	}

	sessionID := s.chartSession(r)
	if sessionID == "" {
		httputil.NotFound(w, "no active session")
		return
	}

	session, err := detect.GetSession(s.db.DB, sessionID)
	if err != nil {
		httputil.NotFound(w, "session not found")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 100 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	tracks, err := detect.SessionTracks(s.db.DB, sessionID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load tracks: %v", err))
		return
	}
	if len(tracks) == 0 {
		httputil.NotFound(w, "no tracks for session")
		return
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}

	factor, label := report.SpeedScale(s.metersPerPixel, s.units)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Speeds", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Speeds", Subtitle: fmt.Sprintf("session=%s tracks=%d", sessionID, len(tracks))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Seconds into session", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Speed (%s)", label), NameLocation: "middle", NameGap: 40}),
	)

	plotted := 0
	for _, track := range tracks {
		observations, err := detect.TrackObservations(s.db.DB, sessionID, track.Identity, 0)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load observations: %v", err))
			return
		}

		data := make([]opts.ScatterData, 0, len(observations))
		for _, obs := range observations {
			if obs.SpeedPxS <= 0 {
				continue
			}
			seconds := float64(obs.TSUnixNanos-session.StartedUnixNanos) / 1e9
			data = append(data, opts.ScatterData{Value: []interface{}{seconds, obs.SpeedPxS * factor}})
		}
		if len(data) == 0 {
			continue
		}
		scatter.AddSeries(detect.DisplayID(track.Identity, track.Class), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		plotted++
	}
	if plotted == 0 {
		httputil.NotFound(w, "no speed observations for session")
		return
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
