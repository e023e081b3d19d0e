package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/httputil"
	"github.com/SmitBdangar/Morph1x/internal/monitoring"
	"github.com/SmitBdangar/Morph1x/internal/report"
	"github.com/SmitBdangar/Morph1x/internal/version"
)

// DetectRequest is one frame of raw detector output.
type DetectRequest struct {
	Detections []detect.Detection `json:"detections"`
}

// TrackSpeed reports one tracked object's speed in the pixel domain and,
// when a scene scale is configured, in the server's units.
type TrackSpeed struct {
	TrackID  int64   `json:"track_id"`
	Class    string  `json:"class"`
	SpeedPxS float64 `json:"speed_px_s"`
	Speed    float64 `json:"speed"`
	Units    string  `json:"units"`
}

// DetectResponse is the processed frame payload.
type DetectResponse struct {
	detect.FramePayload
	Frame          int64          `json:"frame"`
	Processed      bool           `json:"processed"`
	FPS            float64        `json:"fps"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Speeds         []TrackSpeed   `json:"speeds"`
	Alerts         []detect.Alert `json:"alerts,omitempty"`
}

// HealthResponse reports service liveness and frame counters.
type HealthResponse struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	FrameCount     int64   `json:"frame_count"`
	ProcessedCount int64   `json:"processed_count"`
	Session        string  `json:"session,omitempty"`
}

// ObjectRecord is one currently tracked object.
type ObjectRecord struct {
	TrackID   int64   `json:"track_id"`
	DisplayID string  `json:"display_id"`
	Class     string  `json:"class"`
	CX        float64 `json:"cx"`
	CY        float64 `json:"cy"`
}

// ObjectsResponse lists the objects carried from the last processed frame.
type ObjectsResponse struct {
	Count      int            `json:"count"`
	Objects    []ObjectRecord `json:"objects"`
	DisplayIDs []string       `json:"display_ids"`
}

// SpeedSummary is a session's speed statistics in the server's units.
type SpeedSummary struct {
	report.SpeedStats
	Units string `json:"units"`
}

// StatsResponse combines live engine counters with recorded session totals.
type StatsResponse struct {
	FrameCount     int64            `json:"frame_count"`
	ProcessedCount int64            `json:"processed_count"`
	ActiveObjects  int              `json:"active_objects"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	Session        string           `json:"session,omitempty"`
	TrackCount     int              `json:"track_count,omitempty"`
	ClassCounts    map[string]int64 `json:"class_counts,omitempty"`
	Speeds         *SpeedSummary    `json:"speeds,omitempty"`
}

// trackSpeeds converts a frame's pixel speeds at the API boundary.
func (s *Server) trackSpeeds(detections []detect.TrackedDetection) []TrackSpeed {
	factor, label := report.SpeedScale(s.metersPerPixel, s.units)
	speeds := make([]TrackSpeed, 0, len(detections))
	for i := range detections {
		d := &detections[i]
		speeds = append(speeds, TrackSpeed{
			TrackID:  d.Identity,
			Class:    d.Class,
			SpeedPxS: d.SpeedPxS,
			Speed:    d.SpeedPxS * factor,
			Units:    label,
		})
	}
	return speeds
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := HealthResponse{
		Status:         "ok",
		Version:        version.Version,
		UptimeSeconds:  s.clock.Now().Sub(s.startedAt).Seconds(),
		FrameCount:     s.engine.FrameCount(),
		ProcessedCount: s.engine.ProcessedCount(),
	}
	if recorder := s.activeRecorder(); recorder != nil {
		resp.Session = recorder.SessionID()
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body")
		return
	}

	result := s.engine.ProcessFrame(req.Detections)

	resp := DetectResponse{
		FramePayload:   detect.FormatFrame(result.Detections),
		Frame:          result.FrameIndex,
		Processed:      result.Processed,
		FPS:            result.FPS,
		ElapsedSeconds: result.ElapsedSeconds,
		Speeds:         s.trackSpeeds(result.Detections),
	}

	if result.Processed {
		resp.Alerts = s.monitor.Observe(result.Detections)
		if recorder := s.activeRecorder(); recorder != nil {
			// A failed write loses one frame of history, not the frame itself.
			if err := recorder.RecordFrame(result); err != nil {
				monitoring.Logf("record frame %d: %v", result.FrameIndex, err)
			}
		}
	}

	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	s.engine.Reset()
	s.monitor.Reset()

	resp := map[string]string{"status": "reset"}
	session, err := s.rotateSession()
	if err != nil {
		httputil.InternalServerError(w,
			fmt.Sprintf("engine reset but session rotation failed: %v", err))
		return
	}
	if session != "" {
		resp["session"] = session
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	objects := s.engine.ActiveObjects()
	records := make([]ObjectRecord, 0, len(objects))
	displayIDs := make([]string, 0, len(objects))
	for _, obj := range objects {
		id := detect.DisplayID(obj.Identity, obj.Class)
		records = append(records, ObjectRecord{
			TrackID:   obj.Identity,
			DisplayID: id,
			Class:     obj.Class,
			CX:        obj.CX,
			CY:        obj.CY,
		})
		displayIDs = append(displayIDs, id)
	}
	sort.Strings(displayIDs)

	httputil.WriteJSONOK(w, ObjectsResponse{
		Count:      len(records),
		Objects:    records,
		DisplayIDs: displayIDs,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := StatsResponse{
		FrameCount:     s.engine.FrameCount(),
		ProcessedCount: s.engine.ProcessedCount(),
		ActiveObjects:  len(s.engine.ActiveObjects()),
		UptimeSeconds:  s.clock.Now().Sub(s.startedAt).Seconds(),
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		if recorder := s.activeRecorder(); recorder != nil {
			sessionID = recorder.SessionID()
		}
	}

	if sessionID != "" && s.db != nil {
		resp.Session = sessionID

		tracks, err := detect.SessionTracks(s.db.DB, sessionID)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load session tracks: %v", err))
			return
		}
		resp.TrackCount = len(tracks)
		if len(tracks) > 0 {
			resp.ClassCounts = make(map[string]int64)
			for _, track := range tracks {
				resp.ClassCounts[track.Class]++
			}
		}

		speeds, err := detect.SessionSpeeds(s.db.DB, sessionID)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load session speeds: %v", err))
			return
		}
		if len(speeds) > 0 {
			factor, label := report.SpeedScale(s.metersPerPixel, s.units)
			resp.Speeds = &SpeedSummary{
				SpeedStats: report.ComputeSpeedStats(speeds).Scale(factor),
				Units:      label,
			}
		}
	}

	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	config := s.engine.Config()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"confidence_threshold":   config.ConfidenceThreshold,
		"iou_threshold":          config.IoUThreshold,
		"max_detections":         config.MaxDetections,
		"process_every_n_frames": config.ProcessEveryNFrames,
		"reset_identity_counter": config.ResetIdentityCounter,
		"allowed_classes":        config.AllowedClasses,
		"units":                  s.units,
		"meters_per_pixel":       s.metersPerPixel,
		"recording":              s.activeRecorder() != nil,
		"version":                version.Version,
	})
}
