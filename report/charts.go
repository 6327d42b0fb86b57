package report

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/assaultstats/stats"
)

// Chart file names, in the order RenderCharts writes them.
const (
	ChartTopCases      = "top_cases.png"
	ChartChildVsAdult  = "child_vs_adult.png"
	ChartAgeHistogram  = "age_histogram.png"
	ChartTopChildPct   = "top_child_pct.png"
	ChartCategoryShare = "category_share.png"
	ChartAgeBreakdown  = "age_breakdown.png"
)

// ChartSize is the size of every chart image.
type ChartSize struct {
	Width, Height vg.Length
}

// DefaultChartSize is 8x5 inches.
var DefaultChartSize = ChartSize{Width: 8 * vg.Inch, Height: 5 * vg.Inch}

var (
	chartBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chartOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

type chart struct {
	file  string
	build func(*stats.Result) (*plot.Plot, error)
}

var charts = []chart{
	{ChartTopCases, topCasesChart},
	{ChartChildVsAdult, childVsAdultChart},
	{ChartAgeHistogram, ageHistogramChart},
	{ChartTopChildPct, topChildPctChart},
	{ChartCategoryShare, categoryShareChart},
	{ChartAgeBreakdown, ageBreakdownChart},
}

// RenderCharts writes the six PNG charts into dir and returns their paths.
func RenderCharts(dir string, res *stats.Result, size ChartSize) ([]string, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultChartSize
	}
	var paths []string
	for _, ch := range charts {
		p, err := ch.build(res)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", ch.file, err)
		}
		path := filepath.Join(dir, ch.file)
		if err := p.Save(size.Width, size.Height, path); err != nil {
			return paths, fmt.Errorf("%s: %w", ch.file, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.BackgroundColor = color.White
	return p
}

func emptyPlot(title string) *plot.Plot {
	p := newPlot(title + " (no data)")
	p.HideAxes()
	return p
}

// barWidth shrinks bars as their number grows.
func barWidth(n int) vg.Length {
	return vg.Points(math.Max(6, math.Min(28, 240/float64(max(n, 1)))))
}

func rotateXLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// horizontalBars draws one bar per record, first record at the top.
func horizontalBars(title, axis string, records []stats.Record, value func(stats.Record) float64) (*plot.Plot, error) {
	if len(records) == 0 {
		return emptyPlot(title), nil
	}
	n := len(records)
	vals := make(plotter.Values, n)
	names := make([]string, n)
	for i, r := range records {
		vals[n-1-i] = value(r)
		names[n-1-i] = r.Region
	}

	bars, err := plotter.NewBarChart(vals, barWidth(n))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = chartBlue
	bars.LineStyle.Width = 0

	p := newPlot(title)
	p.Add(plotter.NewGrid(), bars)
	p.NominalY(names...)
	p.X.Label.Text = axis
	p.X.Min = 0
	p.X.Tick.Marker = numTicks{}
	return p, nil
}

func topCasesChart(res *stats.Result) (*plot.Plot, error) {
	return horizontalBars("Regions with the most reported cases", "Cases reported", res.TopCases,
		func(r stats.Record) float64 { return float64(r.CasesReported) })
}

func topChildPctChart(res *stats.Result) (*plot.Plot, error) {
	p, err := horizontalBars("Regions with the highest share of child victims", "Child victims (% of all victims)", res.TopChildPct,
		func(r stats.Record) float64 { return r.ChildPercentage })
	if err == nil && len(res.TopChildPct) > 0 {
		p.X.Max = 100
	}
	return p, err
}

func childVsAdultChart(res *stats.Result) (*plot.Plot, error) {
	const title = "Child and adult victims in the top regions"
	records := res.TopCases
	if len(records) == 0 {
		return emptyPlot(title), nil
	}
	child := make(plotter.Values, len(records))
	women := make(plotter.Values, len(records))
	names := make([]string, len(records))
	for i, r := range records {
		child[i] = float64(r.TotalChildVictims)
		women[i] = float64(r.TotalWomenVictims)
		names[i] = r.Region
	}

	w := barWidth(len(records))
	childBars, err := plotter.NewBarChart(child, w)
	if err != nil {
		return nil, err
	}
	childBars.Color = chartBlue
	childBars.LineStyle.Width = 0
	womenBars, err := plotter.NewBarChart(women, w)
	if err != nil {
		return nil, err
	}
	womenBars.Color = chartOrange
	womenBars.LineStyle.Width = 0
	womenBars.StackOn(childBars)

	p := newPlot(title)
	p.Add(plotter.NewGrid(), childBars, womenBars)
	p.Legend.Add("Girl child victims (<18)", childBars)
	p.Legend.Add("Women victims (18+)", womenBars)
	p.Legend.Top = true
	p.NominalX(names...)
	rotateXLabels(p)
	p.Y.Label.Text = "Victims"
	p.Y.Tick.Marker = numTicks{}
	return p, nil
}

func ageHistogramChart(res *stats.Result) (*plot.Plot, error) {
	h := res.Summary.AgeHistogram
	child := make(plotter.Values, 4)
	adult := make(plotter.Values, 4)
	for i := 0; i < 4; i++ {
		child[i] = float64(h[i])
		adult[i] = float64(h[i+4])
	}

	w := barWidth(len(h))
	childBars, err := plotter.NewBarChart(child, w)
	if err != nil {
		return nil, err
	}
	childBars.Color = chartBlue
	childBars.LineStyle.Width = 0
	adultBars, err := plotter.NewBarChart(adult, w)
	if err != nil {
		return nil, err
	}
	adultBars.Color = chartOrange
	adultBars.LineStyle.Width = 0
	adultBars.XMin = 4

	title := "Victims by age group, all regions"
	if res.Summary.NoData {
		title += " (no data)"
	}
	p := newPlot(title)
	p.Add(plotter.NewGrid(), childBars, adultBars)
	p.Legend.Add("Children", childBars)
	p.Legend.Add("Adults", adultBars)
	p.Legend.Top = true
	p.NominalX(stats.BandLabels[:]...)
	p.X.Label.Text = "Age (years)"
	p.Y.Label.Text = "Victims"
	p.Y.Min = 0
	p.Y.Tick.Marker = numTicks{}
	return p, nil
}

func ageBreakdownChart(res *stats.Result) (*plot.Plot, error) {
	const title = "Age profile of victims in the top regions"
	records := res.TopCases
	if len(records) == 0 {
		return emptyPlot(title), nil
	}
	names := make([]string, len(records))
	shares := make([][8]float64, len(records))
	for i, r := range records {
		names[i] = r.Region
		shares[i] = stats.BandShares(r)
	}

	p := newPlot(title)
	w := barWidth(len(records))
	var below *plotter.BarChart
	for band := range stats.BandLabels {
		vals := make(plotter.Values, len(records))
		for i := range records {
			vals[i] = shares[i][band]
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(band)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(stats.BandLabels[band], bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)
	rotateXLabels(p)
	p.Y.Label.Text = "Share of victims (%)"
	// Headroom above 100% keeps the legend clear of the bars.
	p.Y.Min, p.Y.Max = 0, 140
	p.Y.Tick.Marker = percentTicks{}
	return p, nil
}

func categoryShareChart(res *stats.Result) (*plot.Plot, error) {
	const title = "Regions by case category"
	if len(res.Categories) == 0 {
		return emptyPlot(title), nil
	}
	p := newPlot(title)
	p.HideAxes()
	d := &donut{hole: 0.5}
	for i, c := range res.Categories {
		clr := plotutil.Color(i)
		d.wedges = append(d.wedges, wedge{share: c.RegionShare, color: clr})
		p.Legend.Add(fmt.Sprintf("%s (%d)", c.Category, c.Regions), swatch{clr})
	}
	p.Add(d)
	p.Legend.Top = true
	return p, nil
}

type wedge struct {
	share float64 // percent
	color color.Color
}

// donut is a plot.Plotter drawing wedges clockwise from twelve o'clock.
type donut struct {
	wedges []wedge
	hole   float64 // inner radius as a fraction of the outer radius
}

func (d *donut) Plot(c draw.Canvas, _ *plot.Plot) {
	center := c.Center()
	radius := 0.45 * min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y)

	label := draw.TextStyle{
		Color:   color.White,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
	label.Font.Size = vg.Points(10)

	start := math.Pi / 2
	for _, w := range d.wedges {
		sweep := -2 * math.Pi * w.share / 100
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(w.color)
		c.Fill(path)

		if w.share >= 4 {
			mid := start + sweep/2
			r := radius * vg.Length((1+d.hole)/2)
			pt := vg.Point{X: center.X + r*vg.Length(math.Cos(mid)), Y: center.Y + r*vg.Length(math.Sin(mid))}
			c.FillText(label, pt, strconv.FormatFloat(w.share, 'f', 0, 64)+"%")
		}
		start += sweep
	}

	var hole vg.Path
	hole.Move(vg.Point{X: center.X + radius*vg.Length(d.hole), Y: center.Y})
	hole.Arc(center, radius*vg.Length(d.hole), 0, 2*math.Pi)
	hole.Close()
	c.SetColor(color.White)
	c.Fill(hole)
}

// swatch is a legend thumbnail filled with a single color.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// numTicks relabels the default ticks with compact numbers (1.2k, 3M).
type numTicks struct{}

func (numTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}

// percentTicks labels 0 to 100 in steps of 20 and nothing above.
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v := 0.0; v <= 100; v += 20 {
		if v >= min && v <= max {
			ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
		}
	}
	return ticks
}

func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
