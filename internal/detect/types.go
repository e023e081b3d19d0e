package detect

// BBox is an axis-aligned bounding box in integer pixel coordinates.
// A well-formed box has X1 < X2 and Y1 < Y2.
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Valid reports whether the box has positive width and height.
func (b BBox) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// Area returns the box area in square pixels. Degenerate boxes report 0.
func (b BBox) Area() int {
	if !b.Valid() {
		return 0
	}
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Center returns the box centroid in pixel coordinates.
func (b BBox) Center() (cx, cy float64) {
	cx = float64(b.X1+b.X2) / 2
	cy = float64(b.Y1+b.Y2) / 2
	return cx, cy
}

// Detection is a single raw detector output for one frame. Detections are
// produced fresh every frame and are immutable once built.
type Detection struct {
	Box        BBox    `json:"bbox"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether the detection carries a well-formed box and a
// confidence inside [0, 1]. Malformed detections are dropped at the
// filtering boundary rather than failing the frame.
func (d Detection) Valid() bool {
	return d.Box.Valid() && d.Confidence >= 0 && d.Confidence <= 1
}

// TrackedObject is the per-object state carried between frames: the
// identity, the class fixed at creation, and the last observed centroid.
type TrackedObject struct {
	Identity int64
	Class    string
	CX       float64
	CY       float64
}

// TrackedDetection is a detection enriched with a stable identity and a
// pixel-domain speed estimate.
type TrackedDetection struct {
	Detection
	Identity int64   `json:"identity"`
	SpeedPxS float64 `json:"speed_px_s"`
}

// TrackingState is the cross-frame tracker state: the objects observed in
// the previous processed frame plus the next identity to mint. The state
// is a value passed into and returned from UpdateTracks; callers own it
// and no hidden globals are involved.
type TrackingState struct {
	Previous     []TrackedObject
	NextIdentity int64
}

// NewTrackingState returns an empty state whose first minted identity is 1.
func NewTrackingState() TrackingState {
	return TrackingState{NextIdentity: 1}
}
