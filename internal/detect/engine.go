package detect

import (
	"sync"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/timeutil"
)

// EngineConfig holds configuration parameters for the frame engine.
type EngineConfig struct {
	ConfidenceThreshold  float64  // Minimum confidence kept by the filter
	IoUThreshold         float64  // Overlap at or above which same-class boxes are suppressed
	MaxDetections        int      // Cap applied before suppression; <= 0 means no cap
	ProcessEveryNFrames  int      // Detection cadence; 1 processes every frame
	ResetIdentityCounter bool     // Whether Reset also restarts identity numbering
	AllowedClasses       []string // Class allowlist; empty disables class filtering
}

// DefaultEngineConfig returns default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ConfidenceThreshold: 0.5,
		IoUThreshold:        0.45,
		MaxDetections:       100,
		ProcessEveryNFrames: 1,
	}
}

// FrameResult is the outcome of one frame cycle.
type FrameResult struct {
	Detections     []TrackedDetection // Tracked output; nil when the frame was skipped
	FrameIndex     int64              // 1-based frame counter value for this frame
	Processed      bool               // False when the cadence skipped this frame
	ElapsedSeconds float64            // Seconds since the last processed frame; 0 on the first
	FPS            float64            // Frames observed per second since start or last reset
}

// Engine drives the per-frame cycle: class filter, confidence filter,
// suppression, identity tracking. It owns the tracker state across frames
// along with the frame and FPS counters.
//
// Skipped frames (cadence or upstream read failure) leave tracker state
// untouched, so identities survive until the next processed frame. A
// processed frame with zero detections clears the carried objects; an
// object absent from one processed frame is forgotten.
type Engine struct {
	mu     sync.Mutex
	config EngineConfig
	clock  timeutil.Clock

	state          TrackingState
	frameCount     int64
	processedCount int64
	startedAt      time.Time // Zero until the first frame after construction or reset
	lastProcessed  time.Time // Zero until the first processed frame
}

// NewEngine creates an engine with the given configuration. A nil clock
// falls back to the real clock.
func NewEngine(config EngineConfig, clock timeutil.Clock) *Engine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if config.ProcessEveryNFrames < 1 {
		config.ProcessEveryNFrames = 1
	}
	return &Engine{
		config: config,
		clock:  clock,
		state:  NewTrackingState(),
	}
}

// ProcessFrame advances the engine by one frame. Raw detections are
// class-filtered, confidence-filtered, de-duplicated, and tracked; the
// result carries the enriched detections plus frame timing. On a cadence
// skip the result has Processed false and no detections.
func (e *Engine) ProcessFrame(raw []Detection) FrameResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	e.frameCount++
	if e.startedAt.IsZero() {
		e.startedAt = now
	}

	result := FrameResult{
		FrameIndex: e.frameCount,
		FPS:        e.fpsLocked(now),
	}

	if (e.frameCount-1)%int64(e.config.ProcessEveryNFrames) != 0 {
		tracef("frame %d skipped (cadence %d)", e.frameCount, e.config.ProcessEveryNFrames)
		return result
	}

	var elapsed float64
	if !e.lastProcessed.IsZero() {
		elapsed = now.Sub(e.lastProcessed).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}

	clean := ProcessDetections(
		FilterByClass(raw, e.config.AllowedClasses),
		e.config.ConfidenceThreshold,
		e.config.IoUThreshold,
		e.config.MaxDetections,
	)
	tracked, next := UpdateTracks(e.state, clean, elapsed)

	e.state = next
	e.lastProcessed = now
	e.processedCount++

	result.Detections = tracked
	result.Processed = true
	result.ElapsedSeconds = elapsed
	tracef("frame %d: %d raw, %d clean, %d tracked, elapsed=%.3fs",
		e.frameCount, len(raw), len(clean), len(tracked), elapsed)
	return result
}

// Reset clears tracker state and the frame/FPS counters. Identity
// numbering restarts only when the configuration asks for it; otherwise
// identities keep increasing across resets and are never reused.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = ResetTracking(e.state, e.config.ResetIdentityCounter)
	e.frameCount = 0
	e.processedCount = 0
	e.startedAt = time.Time{}
	e.lastProcessed = time.Time{}
	diagf("engine reset (reset_identity_counter=%v)", e.config.ResetIdentityCounter)
}

// fpsLocked computes frames-per-second since startedAt. Callers must hold mu.
func (e *Engine) fpsLocked(now time.Time) float64 {
	if e.startedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(e.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(e.frameCount) / elapsed
}

// State returns a copy of the current tracking state.
func (e *Engine) State() TrackingState {
	e.mu.Lock()
	defer e.mu.Unlock()

	previous := make([]TrackedObject, len(e.state.Previous))
	copy(previous, e.state.Previous)
	return TrackingState{Previous: previous, NextIdentity: e.state.NextIdentity}
}

// ActiveObjects returns a copy of the objects carried from the last
// processed frame.
func (e *Engine) ActiveObjects() []TrackedObject {
	e.mu.Lock()
	defer e.mu.Unlock()

	objects := make([]TrackedObject, len(e.state.Previous))
	copy(objects, e.state.Previous)
	return objects
}

// FrameCount returns the number of frames observed since start or reset.
func (e *Engine) FrameCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

// ProcessedCount returns the number of frames that ran the full cycle.
func (e *Engine) ProcessedCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processedCount
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	config := e.config
	if e.config.AllowedClasses != nil {
		config.AllowedClasses = make([]string, len(e.config.AllowedClasses))
		copy(config.AllowedClasses, e.config.AllowedClasses)
	}
	return config
}
