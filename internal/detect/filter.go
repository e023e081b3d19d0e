package detect

import "sort"

// FilterByConfidence drops malformed and low-confidence detections, sorts
// the survivors by confidence descending, and caps the result length.
//
// Detections with confidence >= threshold survive. Ties keep their input
// order so the output is deterministic. A maxCount <= 0 means no cap.
// Malformed entries (degenerate box or confidence outside [0, 1]) are
// silently dropped so one bad detection never fails the whole frame.
func FilterByConfidence(detections []Detection, threshold float64, maxCount int) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if !d.Valid() {
			continue
		}
		if d.Confidence >= threshold {
			kept = append(kept, d)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	if maxCount > 0 && len(kept) > maxCount {
		kept = kept[:maxCount]
	}
	return kept
}

// FilterByClass keeps only detections whose class is in the allowlist.
// An empty or nil allowlist disables class filtering.
func FilterByClass(detections []Detection, allowed []string) []Detection {
	if len(allowed) == 0 {
		return detections
	}

	allow := make(map[string]bool, len(allowed))
	for _, class := range allowed {
		allow[class] = true
	}

	kept := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if allow[d.Class] {
			kept = append(kept, d)
		}
	}
	return kept
}
