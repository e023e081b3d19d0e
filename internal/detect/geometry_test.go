package detect

import (
	"math"
	"testing"
)

func TestIoU_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		a    BBox
		b    BBox
		want float64
	}{
		{
			name: "identical boxes",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{0, 0, 10, 10},
			want: 1.0,
		},
		{
			name: "offset by one pixel",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{1, 1, 11, 11},
			want: 81.0 / 119.0,
		},
		{
			name: "half overlap",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{5, 0, 15, 10},
			want: 50.0 / 150.0,
		},
		{
			name: "disjoint boxes",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{20, 20, 30, 30},
			want: 0.0,
		},
		{
			name: "touching edges",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{10, 0, 20, 10},
			want: 0.0,
		},
		{
			name: "contained box",
			a:    BBox{0, 0, 10, 10},
			b:    BBox{2, 2, 8, 8},
			want: 36.0 / 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIoU_Symmetry(t *testing.T) {
	pairs := []struct {
		a BBox
		b BBox
	}{
		{BBox{0, 0, 10, 10}, BBox{1, 1, 11, 11}},
		{BBox{0, 0, 10, 10}, BBox{20, 20, 30, 30}},
		{BBox{5, 5, 50, 50}, BBox{10, 10, 20, 20}},
		{BBox{-10, -10, 0, 0}, BBox{-5, -5, 5, 5}},
	}

	for _, p := range pairs {
		ab := IoU(p.a, p.b)
		ba := IoU(p.b, p.a)
		if ab != ba {
			t.Errorf("IoU(%v, %v) = %v but IoU(%v, %v) = %v", p.a, p.b, ab, p.b, p.a, ba)
		}
	}
}

func TestIoU_Range(t *testing.T) {
	boxes := []BBox{
		{0, 0, 10, 10},
		{1, 1, 11, 11},
		{5, 0, 15, 10},
		{-3, -3, 3, 3},
		{100, 100, 110, 120},
	}

	for _, a := range boxes {
		for _, b := range boxes {
			v := IoU(a, b)
			if v < 0.0 || v > 1.0 {
				t.Errorf("IoU(%v, %v) = %v, out of [0, 1]", a, b, v)
			}
		}
		if got := IoU(a, a); got != 1.0 {
			t.Errorf("IoU(%v, %v) = %v, want 1.0", a, a, got)
		}
	}
}

func TestIoU_DegenerateBoxes(t *testing.T) {
	degenerate := BBox{5, 5, 5, 5}
	if got := IoU(degenerate, degenerate); got != 0.0 {
		t.Errorf("IoU of zero-area boxes = %v, want 0.0", got)
	}
	if got := IoU(degenerate, BBox{0, 0, 10, 10}); got != 0.0 {
		t.Errorf("IoU of zero-area vs normal box = %v, want 0.0", got)
	}
}

func TestBBox_Center(t *testing.T) {
	cx, cy := BBox{0, 0, 10, 10}.Center()
	if cx != 5.0 || cy != 5.0 {
		t.Errorf("Center() = (%v, %v), want (5, 5)", cx, cy)
	}

	cx, cy = BBox{100, 100, 105, 103}.Center()
	if cx != 102.5 || cy != 101.5 {
		t.Errorf("Center() = (%v, %v), want (102.5, 101.5)", cx, cy)
	}
}

func TestBBox_Valid(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"well-formed", BBox{0, 0, 10, 10}, true},
		{"negative coordinates", BBox{-10, -10, -5, -5}, true},
		{"zero width", BBox{5, 0, 5, 10}, false},
		{"zero height", BBox{0, 5, 10, 5}, false},
		{"inverted x", BBox{10, 0, 0, 10}, false},
		{"inverted y", BBox{0, 10, 10, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Valid(); got != tt.want {
				t.Errorf("%v.Valid() = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}
