package detect

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/SmitBdangar/Morph1x/internal/timeutil"
)

// Recorder persists one session's tracked frames: a session row at start,
// per-identity track aggregates kept fresh as frames arrive, and one
// observation row per sighting.
type Recorder struct {
	db        *sql.DB
	sessionID string
	clock     timeutil.Clock

	mu     sync.Mutex
	tracks map[int64]*trackAggregate
}

// trackAggregate accumulates per-identity stats across a session.
type trackAggregate struct {
	class          string
	firstUnixNanos int64
	lastUnixNanos  int64
	count          int64
	peakSpeed      float64
	sumSpeed       float64
}

// NewRecorder opens a new session and returns a recorder bound to it.
// units and metersPerPixel describe how callers will interpret the stored
// pixel speeds; they are recorded with the session, not applied to it.
func NewRecorder(db *sql.DB, config EngineConfig, units string, metersPerPixel float64, clock timeutil.Clock) (*Recorder, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	session := &Session{
		ID:                  uuid.New().String(),
		StartedUnixNanos:    clock.Now().UnixNano(),
		ConfidenceThreshold: config.ConfidenceThreshold,
		IoUThreshold:        config.IoUThreshold,
		MaxDetections:       config.MaxDetections,
		ProcessEveryN:       config.ProcessEveryNFrames,
		SpeedUnits:          units,
		MetersPerPixel:      metersPerPixel,
	}
	if err := InsertSession(db, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	diagf("session %s started", session.ID)

	return &Recorder{
		db:        db,
		sessionID: session.ID,
		clock:     clock,
		tracks:    make(map[int64]*trackAggregate),
	}, nil
}

// SessionID returns the identifier of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// RecordFrame persists one frame's tracked detections. Skipped frames are
// ignored. The first error aborts the frame; already-written rows for the
// frame stay, which at worst double-counts nothing since observation rows
// are keyed by timestamp.
func (r *Recorder) RecordFrame(result FrameResult) error {
	if !result.Processed {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nowNanos := r.clock.Now().UnixNano()
	for i := range result.Detections {
		d := &result.Detections[i]
		agg := r.tracks[d.Identity]
		if agg == nil {
			agg = &trackAggregate{
				class:          d.Class,
				firstUnixNanos: nowNanos,
			}
			r.tracks[d.Identity] = agg
		}
		agg.lastUnixNanos = nowNanos
		agg.count++
		agg.sumSpeed += d.SpeedPxS
		if d.SpeedPxS > agg.peakSpeed {
			agg.peakSpeed = d.SpeedPxS
		}

		if err := UpsertTrack(r.db, &TrackRow{
			SessionID:        r.sessionID,
			Identity:         d.Identity,
			Class:            agg.class,
			FirstUnixNanos:   agg.firstUnixNanos,
			LastUnixNanos:    agg.lastUnixNanos,
			ObservationCount: agg.count,
			PeakSpeedPxS:     agg.peakSpeed,
			AvgSpeedPxS:      agg.sumSpeed / float64(agg.count),
		}); err != nil {
			return err
		}

		cx, cy := d.Box.Center()
		if err := InsertObservation(r.db, &ObservationRow{
			SessionID:   r.sessionID,
			Identity:    d.Identity,
			TSUnixNanos: nowNanos,
			CX:          cx,
			CY:          cy,
			SpeedPxS:    d.SpeedPxS,
			Confidence:  d.Confidence,
			Box:         d.Box,
		}); err != nil {
			return err
		}
	}

	return nil
}

// TrackCount returns how many identities this session has recorded.
func (r *Recorder) TrackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracks)
}

// Close stamps the session's end time. The recorder must not be used
// after Close.
func (r *Recorder) Close() error {
	if err := CloseSession(r.db, r.sessionID, r.clock.Now().UnixNano()); err != nil {
		return err
	}
	diagf("session %s closed", r.sessionID)
	return nil
}
