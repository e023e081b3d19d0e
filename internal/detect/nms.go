package detect

import "sort"

// SuppressOverlaps applies greedy non-maximum suppression within each
// class group. Boxes of different classes never suppress each other, so a
// person box and a dog box may fully overlap and both survive.
//
// Groups are processed in first-seen class order and the kept detections
// are concatenated in that order, keeping the output deterministic.
// Within a group the highest-confidence box is kept and every remaining
// box whose IoU with it is >= iouThreshold is removed; a box at exactly
// the threshold is suppressed.
func SuppressOverlaps(detections []Detection, iouThreshold float64) []Detection {
	if len(detections) <= 1 {
		return detections
	}

	classOrder := make([]string, 0)
	groups := make(map[string][]Detection)
	for _, d := range detections {
		if _, seen := groups[d.Class]; !seen {
			classOrder = append(classOrder, d.Class)
		}
		groups[d.Class] = append(groups[d.Class], d)
	}

	kept := make([]Detection, 0, len(detections))
	for _, class := range classOrder {
		kept = append(kept, suppressGroup(groups[class], iouThreshold)...)
	}
	return kept
}

// suppressGroup runs greedy NMS over a single class group.
func suppressGroup(group []Detection, iouThreshold float64) []Detection {
	if len(group) <= 1 {
		return group
	}

	sorted := make([]Detection, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	removed := make([]bool, len(sorted))
	for i := range sorted {
		if removed[i] {
			continue
		}
		kept = append(kept, sorted[i])

		for j := i + 1; j < len(sorted); j++ {
			if removed[j] {
				continue
			}
			if IoU(sorted[i].Box, sorted[j].Box) >= iouThreshold {
				removed[j] = true
			}
		}
	}
	return kept
}
