package detect

// ProcessDetections runs the full per-frame post-processing transform:
// confidence filtering followed by class-scoped suppression.
//
// Filtering runs first so the quadratic suppression step only sees boxes
// worth comparing, and the count cap is applied before suppression. The
// cap is therefore conservative: the final output may hold fewer than
// maxCount detections once overlaps are removed.
func ProcessDetections(detections []Detection, confidenceThreshold, iouThreshold float64, maxCount int) []Detection {
	return SuppressOverlaps(FilterByConfidence(detections, confidenceThreshold, maxCount), iouThreshold)
}
