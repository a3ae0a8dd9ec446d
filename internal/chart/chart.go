// Package chart renders the top-ten production ranking as a bar chart.
//
// A Chart is built from the ranked entries once per render cycle and can be
// written as an interactive go-echarts page or as a static PNG.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
)

// Title is shown above the chart.
const Title = "Top 10 Regiões Produtoras"

// SeriesName labels the value axis and the data series.
const SeriesName = "Produção (Toneladas)"

const titleColor = "#e26838"

// Palette holds one color per bar position, reused cyclically.
var Palette = []string{
	"#CC4400", "#E55100", "#FF5722", "#FF6633", "#FF7744",
	"#FF8855", "#FF9966", "#CD7F32", "#D2691E", "#DEB887",
}

// ErrDisposed is returned when rendering a chart that has been disposed.
var ErrDisposed = errors.New("chart disposed")

// Bar is one category of the chart.
type Bar struct {
	Label   string `json:"label"`  // region name without the state
	Region  string `json:"region"` // full label
	Value   int64  `json:"value"`
	Color   string `json:"color"`
	Tooltip string `json:"tooltip"` // formatted value with unit
}

// Chart is a single chart instance.
type Chart struct {
	bars     []Bar
	disposed bool
}

// Build creates a chart from the top entries, already in rank order.
func Build(top []domain.Entry) *Chart {
	bars := make([]Bar, len(top))
	for i, e := range top {
		bars[i] = Bar{
			Label:   e.RegionName(),
			Region:  e.Region,
			Value:   e.Quantity,
			Color:   Palette[i%len(Palette)],
			Tooltip: domain.FormatQuantity(e.Quantity),
		}
	}
	return &Chart{bars: bars}
}

// Bars returns the chart's categories.
func (c *Chart) Bars() []Bar {
	return c.bars
}

// Dispose releases the chart's data. Rendering afterwards fails with ErrDisposed.
func (c *Chart) Dispose() {
	c.bars = nil
	c.disposed = true
}

// Disposed reports whether Dispose has been called.
func (c *Chart) Disposed() bool {
	return c.disposed
}

// Render writes the chart as a standalone go-echarts HTML page.
func (c *Chart) Render(w io.Writer) error {
	if c.disposed {
		return ErrDisposed
	}
	return c.echarts().Render(w)
}

func (c *Chart) echarts() *charts.Bar {
	labels := make([]string, len(c.bars))
	data := make([]opts.BarData, len(c.bars))
	tooltips := make([]string, len(c.bars))
	for i, b := range c.bars {
		labels[i] = b.Label
		data[i] = opts.BarData{
			Name:      b.Label,
			Value:     b.Value,
			ItemStyle: &opts.ItemStyle{Color: b.Color, BorderColor: "#272524"},
		}
		tooltips[i] = b.Tooltip
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: Title,
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      Title,
			TitleStyle: &opts.TextStyle{Color: titleColor, FontSize: 16},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFunc(tooltips)),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate:   45,
				Interval: "0",
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: SeriesName,
			AxisLabel: &opts.AxisLabel{
				Formatter: opts.FuncOpts(axisLabelFunc),
			},
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   "90",
			Bottom: "110",
		}),
	)
	bar.SetXAxis(labels).AddSeries(SeriesName, data)
	return bar
}

// axisLabelFunc groups digits the same way as domain.FormatValue.
const axisLabelFunc = `function (value) { return Number(value).toLocaleString('pt-BR'); }`

// tooltipFunc embeds the server-side formatted values so the tooltip shows
// exactly what the rest of the dashboard shows.
func tooltipFunc(tooltips []string) string {
	quoted := make([]string, len(tooltips))
	for i, t := range tooltips {
		quoted[i] = "'" + strings.ReplaceAll(t, "'", `\'`) + "'"
	}
	return fmt.Sprintf("function (p) { var v = [%s]; return p.name + ': ' + v[p.dataIndex]; }",
		strings.Join(quoted, ", "))
}

// parseHex converts "#RRGGBB" to a color; malformed input yields opaque black.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
