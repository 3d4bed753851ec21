// Package charts renders the analysis results as PNG charts. Renderers take
// already-computed slices, never raw tables, so chart generation stays a
// pure presentation step.
package charts

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// ErrNoData is returned when a chart has nothing to draw. Callers can treat
// it as a warning rather than a failure.
var ErrNoData = errors.New("no data to plot")

var (
	trendColor     = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	typhoonColor   = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	spikeColor     = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	lagColor       = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	observedColor  = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	syntheticColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// SaveTrend draws the monthly mean price line with a vertical rule for each
// typhoon that entered PAR inside the plotted range.
func SaveTrend(trend []analysis.MonthlyPoint, typhoons []dataset.TyphoonEvent, path string) error {
	if len(trend) == 0 {
		return fmt.Errorf("trend chart: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Monthly Mean Retail Price"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Mean price (PHP)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	points := make(plotter.XYs, len(trend))
	yMin, yMax := trend[0].MeanPrice, trend[0].MeanPrice
	for i, pt := range trend {
		points[i].X = float64(pt.Month.Time().Unix())
		points[i].Y = pt.MeanPrice
		if pt.MeanPrice < yMin {
			yMin = pt.MeanPrice
		}
		if pt.MeanPrice > yMax {
			yMax = pt.MeanPrice
		}
	}
	if yMin == yMax {
		yMax = yMin + 1
	}
	pad := (yMax - yMin) * 0.05
	p.Y.Min = yMin - pad
	p.Y.Max = yMax + pad

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("trend line: %w", err)
	}
	line.Color = trendColor
	line.Width = vg.Points(2)
	p.Add(line)

	var labelXYs plotter.XYs
	var labels []string
	for _, ty := range typhoons {
		x := float64(ty.Date.Time().Unix())
		rule, err := plotter.NewLine(plotter.XYs{{X: x, Y: p.Y.Min}, {X: x, Y: p.Y.Max}})
		if err != nil {
			return fmt.Errorf("typhoon rule: %w", err)
		}
		rule.Color = typhoonColor
		rule.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(rule)
		labelXYs = append(labelXYs, plotter.XY{X: x, Y: yMax})
		labels = append(labels, ty.Name)
	}
	if len(labels) > 0 {
		labelPoints, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
		if err != nil {
			return fmt.Errorf("typhoon labels: %w", err)
		}
		p.Add(labelPoints)
	}

	p.Add(plotter.NewGrid())

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save trend chart: %w", err)
	}
	return nil
}

// SaveSpikeCounts draws spike counts per commodity as a bar chart.
func SaveSpikeCounts(counts []analysis.SpikeCount, path string) error {
	if len(counts) == 0 {
		return fmt.Errorf("spike chart: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Price Spikes per Commodity"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Spikes"

	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Spikes)
		names[i] = c.Commodity
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("spike bars: %w", err)
	}
	bars.Color = spikeColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.5
	p.X.Tick.Label.XAlign = -0.8

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save spike chart: %w", err)
	}
	return nil
}

// SaveLagHistogram draws the distribution of spike lags in months.
func SaveLagHistogram(bins []int, path string) error {
	total := 0
	for _, n := range bins {
		total += n
	}
	if total == 0 {
		return fmt.Errorf("lag histogram: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Typhoon-to-Spike Lag Distribution"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Lag (months)"
	p.Y.Label.Text = "Spike records"

	values := make(plotter.Values, len(bins))
	names := make([]string, len(bins))
	for i, n := range bins {
		values[i] = float64(n)
		names[i] = fmt.Sprintf("%d", i)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("lag bars: %w", err)
	}
	bars.Color = lagColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save lag histogram: %w", err)
	}
	return nil
}

// SaveVolatility draws the volatility ranking as a bar chart.
func SaveVolatility(ranking []analysis.CommodityStats, path string) error {
	if len(ranking) == 0 {
		return fmt.Errorf("volatility chart: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Price Volatility by Commodity"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Std of retail price (PHP)"

	values := make(plotter.Values, len(ranking))
	names := make([]string, len(ranking))
	for i, s := range ranking {
		values[i] = s.StdPrice
		names[i] = s.Commodity
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("volatility bars: %w", err)
	}
	bars.Color = lagColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.5
	p.X.Tick.Label.XAlign = -0.8

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save volatility chart: %w", err)
	}
	return nil
}

// SaveResilience draws volatility against mean lag, one point per commodity.
// Radius grows with spike count and synthetic lag values get their own color
// so filled-in commodities stand out.
func SaveResilience(metrics []analysis.ResilienceMetric, path string) error {
	if len(metrics) == 0 {
		return fmt.Errorf("resilience chart: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Commodity Resilience Map"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Volatility (std of price)"
	p.Y.Label.Text = "Mean lag after typhoon (months)"

	points := make(plotter.XYs, len(metrics))
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		points[i].X = m.Volatility
		points[i].Y = m.MeanLag
		labels[i] = m.Commodity
	}

	for i, m := range metrics {
		pt, err := plotter.NewScatter(plotter.XYs{points[i]})
		if err != nil {
			return fmt.Errorf("resilience point: %w", err)
		}

		pt.GlyphStyle.Color = observedColor
		if m.LagSynthetic {
			pt.GlyphStyle.Color = syntheticColor
		}

		radius := vg.Points(4)
		if m.SpikeCount > 5 {
			radius = vg.Points(10)
		} else if m.SpikeCount > 2 {
			radius = vg.Points(8)
		} else if m.SpikeCount > 0 {
			radius = vg.Points(6)
		}
		pt.GlyphStyle.Radius = radius

		p.Add(pt)
	}

	labelPoints, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return fmt.Errorf("resilience labels: %w", err)
	}
	p.Add(labelPoints)
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save resilience chart: %w", err)
	}
	return nil
}
