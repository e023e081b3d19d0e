package detect_test

import (
	"testing"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/testutil"
	"github.com/SmitBdangar/Morph1x/internal/timeutil"
)

func trackedPerson(identity int64, speed float64) detect.TrackedDetection {
	return detect.TrackedDetection{
		Detection: detect.Detection{
			Box:        detect.BBox{X1: 95, Y1: 95, X2: 105, Y2: 105},
			Class:      "person",
			Confidence: 0.9,
		},
		Identity: identity,
		SpeedPxS: speed,
	}
}

func TestRecorder_SessionLifecycle(t *testing.T) {
	database := testutil.TempDB(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	config := detect.DefaultEngineConfig()
	recorder, err := detect.NewRecorder(database.DB, config, "kmph", 0.05, clock)
	testutil.AssertNoError(t, err)

	session, err := detect.GetSession(database.DB, recorder.SessionID())
	testutil.AssertNoError(t, err)
	if session.ConfidenceThreshold != config.ConfidenceThreshold {
		t.Errorf("session config mismatch: %+v", session)
	}
	if session.SpeedUnits != "kmph" || session.MetersPerPixel != 0.05 {
		t.Errorf("unit settings not recorded: %+v", session)
	}
	if session.EndedUnixNanos != 0 {
		t.Errorf("new session must be open, got end %d", session.EndedUnixNanos)
	}

	clock.Advance(time.Minute)
	testutil.AssertNoError(t, recorder.Close())

	session, err = detect.GetSession(database.DB, recorder.SessionID())
	testutil.AssertNoError(t, err)
	if session.EndedUnixNanos <= session.StartedUnixNanos {
		t.Errorf("expected end after start, got start=%d end=%d",
			session.StartedUnixNanos, session.EndedUnixNanos)
	}
}

func TestRecorder_RecordFrameAggregates(t *testing.T) {
	database := testutil.TempDB(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	recorder, err := detect.NewRecorder(database.DB, detect.DefaultEngineConfig(), "mps", 0, clock)
	testutil.AssertNoError(t, err)

	// Frame 1: first sighting, no speed.
	testutil.AssertNoError(t, recorder.RecordFrame(detect.FrameResult{
		Detections: []detect.TrackedDetection{trackedPerson(1, 0)},
		Processed:  true,
	}))

	// Frame 2: moving at 4 px/s.
	clock.Advance(time.Second)
	testutil.AssertNoError(t, recorder.RecordFrame(detect.FrameResult{
		Detections: []detect.TrackedDetection{trackedPerson(1, 4.0)},
		Processed:  true,
	}))

	// Frame 3: peak speed 6 px/s.
	clock.Advance(time.Second)
	testutil.AssertNoError(t, recorder.RecordFrame(detect.FrameResult{
		Detections: []detect.TrackedDetection{trackedPerson(1, 6.0)},
		Processed:  true,
	}))

	tracks, err := detect.SessionTracks(database.DB, recorder.SessionID())
	testutil.AssertNoError(t, err)
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	track := tracks[0]
	if track.ObservationCount != 3 {
		t.Errorf("expected 3 observations, got %d", track.ObservationCount)
	}
	if track.PeakSpeedPxS != 6.0 {
		t.Errorf("expected peak 6.0, got %v", track.PeakSpeedPxS)
	}
	if want := (0 + 4.0 + 6.0) / 3; track.AvgSpeedPxS != want {
		t.Errorf("expected avg %v, got %v", want, track.AvgSpeedPxS)
	}
	if track.LastUnixNanos-track.FirstUnixNanos != int64(2*time.Second) {
		t.Errorf("expected 2s lifetime, got %d ns", track.LastUnixNanos-track.FirstUnixNanos)
	}

	obs, err := detect.TrackObservations(database.DB, recorder.SessionID(), 1, 0)
	testutil.AssertNoError(t, err)
	if len(obs) != 3 {
		t.Fatalf("expected 3 observation rows, got %d", len(obs))
	}
	if obs[0].CX != 100 || obs[0].CY != 100 {
		t.Errorf("expected centroid (100, 100), got (%v, %v)", obs[0].CX, obs[0].CY)
	}

	if recorder.TrackCount() != 1 {
		t.Errorf("expected 1 tracked identity, got %d", recorder.TrackCount())
	}
}

func TestRecorder_IgnoresSkippedFrames(t *testing.T) {
	database := testutil.TempDB(t)
	recorder, err := detect.NewRecorder(database.DB, detect.DefaultEngineConfig(), "mps", 0, nil)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, recorder.RecordFrame(detect.FrameResult{
		Detections: nil,
		Processed:  false,
	}))

	tracks, err := detect.SessionTracks(database.DB, recorder.SessionID())
	testutil.AssertNoError(t, err)
	if len(tracks) != 0 {
		t.Errorf("skipped frames must not persist anything, got %d tracks", len(tracks))
	}
}

func TestRecorder_MultipleIdentities(t *testing.T) {
	database := testutil.TempDB(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	recorder, err := detect.NewRecorder(database.DB, detect.DefaultEngineConfig(), "mps", 0, clock)
	testutil.AssertNoError(t, err)

	dog := detect.TrackedDetection{
		Detection: detect.Detection{
			Box:        detect.BBox{X1: 200, Y1: 200, X2: 220, Y2: 220},
			Class:      "dog",
			Confidence: 0.8,
		},
		Identity: 2,
	}
	testutil.AssertNoError(t, recorder.RecordFrame(detect.FrameResult{
		Detections: []detect.TrackedDetection{trackedPerson(1, 0), dog},
		Processed:  true,
	}))

	tracks, err := detect.SessionTracks(database.DB, recorder.SessionID())
	testutil.AssertNoError(t, err)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	classes := map[int64]string{}
	for _, track := range tracks {
		classes[track.Identity] = track.Class
	}
	if classes[1] != "person" || classes[2] != "dog" {
		t.Errorf("unexpected classes: %v", classes)
	}
}
