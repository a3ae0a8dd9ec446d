package chart

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
)

// PNG canvas size.
const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 6 * vg.Inch
)

// WritePNG draws the chart with gonum/plot and writes it as PNG.
func (c *Chart) WritePNG(w io.Writer) error {
	if c.disposed {
		return ErrDisposed
	}

	p := plot.New()
	p.Title.Text = Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.TextStyle.Color = parseHex(titleColor)
	p.Y.Label.Text = SeriesName
	p.Y.Tick.Marker = localeTicks{}

	labels := make([]string, len(c.bars))
	var maxValue float64
	for i, b := range c.bars {
		bars, err := plotter.NewBarChart(plotter.Values{float64(b.Value)}, vg.Points(28))
		if err != nil {
			return fmt.Errorf("bar %q: %w", b.Label, err)
		}
		bars.XMin = float64(i)
		bars.Color = parseHex(b.Color)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		labels[i] = b.Label
		maxValue = math.Max(maxValue, float64(b.Value))
	}

	if len(labels) > 0 {
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	} else {
		p.X.Min, p.X.Max = 0, 1
		maxValue = 1
	}
	p.Y.Min = 0
	p.Y.Max = maxValue * 1.1

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// localeTicks places ticks like plot.DefaultTicks and labels them with the
// dashboard's number format.
type localeTicks struct{}

func (localeTicks) Ticks(minValue, maxValue float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(minValue, maxValue)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = domain.FormatValue(int64(math.Round(t.Value)))
	}
	return ticks
}
