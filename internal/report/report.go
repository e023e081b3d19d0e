package report

import (
	"database/sql"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/units"
)

// TrackSummary is one identity's recorded lifetime.
type TrackSummary struct {
	Identity        int64   `json:"identity"`
	DisplayID       string  `json:"display_id"`
	Class           string  `json:"class"`
	Observations    int64   `json:"observations"`
	DurationSeconds float64 `json:"duration_seconds"`
	PeakSpeed       float64 `json:"peak_speed"`
	AvgSpeed        float64 `json:"avg_speed"`
}

// SessionReport is the assembled summary of one recorded session. All
// speeds are in Units.
type SessionReport struct {
	Session     *detect.Session  `json:"session"`
	Units       string           `json:"units"`
	ClassCounts map[string]int64 `json:"class_counts"`
	Tracks      []TrackSummary   `json:"tracks"`
	Speeds      SpeedStats       `json:"speeds"`
}

// SpeedScale returns the multiplier taking pixel speeds to targetUnits,
// and the label to print with them. Without a calibrated scene scale the
// report stays in the pixel domain.
func SpeedScale(metersPerPixel float64, targetUnits string) (float64, string) {
	if metersPerPixel <= 0 {
		return 1, "px/s"
	}
	return units.ConvertSpeed(units.PixelsToMeters(1, metersPerPixel), targetUnits), targetUnits
}

// BuildSessionReport loads a session's rows and assembles the report.
// An empty targetUnits falls back to the units the session was recorded
// with.
func BuildSessionReport(database *sql.DB, sessionID, targetUnits string) (*SessionReport, error) {
	session, err := detect.GetSession(database, sessionID)
	if err != nil {
		return nil, err
	}
	if targetUnits == "" {
		targetUnits = session.SpeedUnits
	}
	scale, label := SpeedScale(session.MetersPerPixel, targetUnits)

	tracks, err := detect.SessionTracks(database, sessionID)
	if err != nil {
		return nil, err
	}
	speeds, err := detect.SessionSpeeds(database, sessionID)
	if err != nil {
		return nil, err
	}

	r := &SessionReport{
		Session:     session,
		Units:       label,
		ClassCounts: make(map[string]int64),
		Speeds:      ComputeSpeedStats(speeds).Scale(scale),
	}
	for _, track := range tracks {
		r.ClassCounts[track.Class]++
		r.Tracks = append(r.Tracks, TrackSummary{
			Identity:        track.Identity,
			DisplayID:       detect.DisplayID(track.Identity, track.Class),
			Class:           track.Class,
			Observations:    track.ObservationCount,
			DurationSeconds: float64(track.LastUnixNanos-track.FirstUnixNanos) / 1e9,
			PeakSpeed:       track.PeakSpeedPxS * scale,
			AvgSpeed:        track.AvgSpeedPxS * scale,
		})
	}
	return r, nil
}

// WriteText renders the report as plain text.
func (r *SessionReport) WriteText(w io.Writer) {
	fmt.Fprintln(w, "========== Session Report ==========")
	fmt.Fprintf(w, "Session: %s\n", r.Session.ID)
	fmt.Fprintf(w, "Started: %s\n", time.Unix(0, r.Session.StartedUnixNanos).UTC().Format(time.RFC3339))
	if r.Session.EndedUnixNanos > 0 {
		dur := time.Duration(r.Session.EndedUnixNanos - r.Session.StartedUnixNanos)
		fmt.Fprintf(w, "Duration: %.1f seconds\n", dur.Seconds())
	} else {
		fmt.Fprintln(w, "Duration: session still open")
	}

	fmt.Fprintf(w, "\nTracks: %d\n", len(r.Tracks))
	if len(r.ClassCounts) > 0 {
		fmt.Fprintln(w, "\nTracks by Class:")
		classes := make([]string, 0, len(r.ClassCounts))
		for class := range r.ClassCounts {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		for _, class := range classes {
			fmt.Fprintf(w, "  %s: %d\n", class, r.ClassCounts[class])
		}
	}

	fmt.Fprintf(w, "\nSpeed Statistics (%s):\n", r.Units)
	if r.Speeds.Count == 0 {
		fmt.Fprintln(w, "  no speed observations")
	} else {
		fmt.Fprintf(w, "  Max: %.2f\n", r.Speeds.Max)
		fmt.Fprintf(w, "  Avg: %.2f\n", r.Speeds.Mean)
		fmt.Fprintf(w, "  P50: %.2f\n", r.Speeds.P50)
		fmt.Fprintf(w, "  P85: %.2f\n", r.Speeds.P85)
		fmt.Fprintf(w, "  P95: %.2f\n", r.Speeds.P95)
	}

	if len(r.Tracks) > 0 {
		fmt.Fprintln(w, "\nPer-Track Summary:")
		for _, t := range r.Tracks {
			fmt.Fprintf(w, "  %-10s %-12s obs=%-5d dur=%-7.1fs peak=%-8.2f avg=%.2f\n",
				t.DisplayID, t.Class, t.Observations, t.DurationSeconds, t.PeakSpeed, t.AvgSpeed)
		}
	}
}
