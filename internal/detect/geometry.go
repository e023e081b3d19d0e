package detect

// IoU computes intersection-over-union for two axis-aligned boxes.
// Non-overlapping boxes score 0.0 exactly, with no division performed.
// Degenerate inputs (zero-area boxes) also score 0.0 rather than dividing
// by a zero union.
func IoU(a, b BBox) float64 {
	ix1 := a.X1
	if b.X1 > ix1 {
		ix1 = b.X1
	}
	iy1 := a.Y1
	if b.Y1 > iy1 {
		iy1 = b.Y1
	}
	ix2 := a.X2
	if b.X2 < ix2 {
		ix2 = b.X2
	}
	iy2 := a.Y2
	if b.Y2 < iy2 {
		iy2 = b.Y2
	}

	if ix2 <= ix1 || iy2 <= iy1 {
		return 0.0
	}

	interArea := float64((ix2 - ix1) * (iy2 - iy1))
	unionArea := float64(a.Area()) + float64(b.Area()) - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
