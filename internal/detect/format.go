package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FramePayload is the wire shape for one frame's tracked detections.
type FramePayload struct {
	TotalDetections int               `json:"total_detections"`
	Detections      []DetectionRecord `json:"detections"`
}

// DetectionRecord is the wire shape for a single tracked detection.
type DetectionRecord struct {
	ID         string  `json:"id"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
	TrackID    int64   `json:"track_id"`
}

// DisplayID renders a human-facing label for a tracked identity, e.g.
// "ID-3-P" for a person with identity 3. An empty class yields "ID-3".
func DisplayID(identity int64, class string) string {
	if class == "" {
		return fmt.Sprintf("ID-%d", identity)
	}
	initial := strings.ToUpper(class[:1])
	return fmt.Sprintf("ID-%d-%s", identity, initial)
}

// FormatFrame converts tracked detections into the frame payload consumed
// by API clients and overlays. Confidence is rounded to three decimals.
func FormatFrame(detections []TrackedDetection) FramePayload {
	records := make([]DetectionRecord, 0, len(detections))
	for _, d := range detections {
		records = append(records, DetectionRecord{
			ID:         DisplayID(d.Identity, d.Class),
			Class:      d.Class,
			Confidence: math.Round(d.Confidence*1000) / 1000,
			BBox:       [4]int{d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2},
			TrackID:    d.Identity,
		})
	}
	return FramePayload{
		TotalDetections: len(records),
		Detections:      records,
	}
}

// SummarizeByClass counts tracked detections per class label.
func SummarizeByClass(detections []TrackedDetection) map[string]int {
	summary := make(map[string]int)
	for _, d := range detections {
		summary[d.Class]++
	}
	return summary
}

// ActiveDisplayIDs returns the sorted unique display labels present in a
// frame, for HUD-style object list panels.
func ActiveDisplayIDs(detections []TrackedDetection) []string {
	seen := make(map[string]bool, len(detections))
	ids := make([]string, 0, len(detections))
	for _, d := range detections {
		id := DisplayID(d.Identity, d.Class)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
