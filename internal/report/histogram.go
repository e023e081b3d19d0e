package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func speedHistogramPlot(speeds []float64, unitsLabel string) (*plot.Plot, error) {
	if len(speeds) == 0 {
		return nil, ErrNoSpeeds
	}

	p := plot.New()
	p.Title.Text = "Speed Distribution"
	p.X.Label.Text = fmt.Sprintf("Speed (%s)", unitsLabel)
	p.Y.Label.Text = "Observations"

	bins := 20
	if len(speeds) < bins {
		bins = len(speeds)
	}

	h, err := plotter.NewHist(plotter.Values(speeds), bins)
	if err != nil {
		return nil, fmt.Errorf("build histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 0xff}
	p.Add(h)

	return p, nil
}

// SaveSpeedHistogram renders a speed distribution to an image file. The
// format follows the path extension (.png, .svg, .pdf).
func SaveSpeedHistogram(speeds []float64, unitsLabel, path string) error {
	p, err := speedHistogramPlot(speeds, unitsLabel)
	if err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}

// RenderSpeedHistogram renders a speed distribution as PNG bytes, for
// callers that write through an abstract filesystem instead of a path.
func RenderSpeedHistogram(speeds []float64, unitsLabel string) ([]byte, error) {
	p, err := speedHistogramPlot(speeds, unitsLabel)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	return buf.Bytes(), nil
}
