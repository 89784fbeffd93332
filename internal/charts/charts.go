package charts

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// Chart file names
const (
	YearlyTrendFile     = "01_yearly_trend.png"
	TopStatesFile       = "02_top_states.png"
	CollisionTypesFile  = "03_collision_types.png"
	ViolationsFile      = "04_violations.png"
	SafetyDevicesFile   = "05_safety_devices.png"
	RoadUsersFile       = "06_road_users.png"
	StateComparisonFile = "07_state_comparison.png"
)

const topStatesCount = 10

// YearlyTrend plots the per-year totals of t as a filled line with value labels
func (r *Renderer) YearlyTrend(t *table.Table, years []string, title string) (string, error) {
	years = t.DeclaredYears(years)

	p := newPlot(title, "Year", "Total Count")
	p.Add(plotter.NewGrid())

	if len(years) > 0 {
		pts := make(plotter.XYs, len(years))
		for i, year := range years {
			col, _ := t.Column(year)
			pts[i] = plotter.XY{X: float64(i), Y: col.Sum()}
		}

		area := make(plotter.XYs, 0, len(pts)+2)
		area = append(area, plotter.XY{X: pts[0].X, Y: 0})
		area = append(area, pts...)
		area = append(area, plotter.XY{X: pts[len(pts)-1].X, Y: 0})
		fill, err := plotter.NewPolygon(area)
		if err != nil {
			return "", errors.NewRenderError("yearly trend area", err)
		}
		c := hexColor(0x3498db)
		fill.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 77}
		fill.LineStyle.Width = vg.Length(0)
		p.Add(fill)

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return "", errors.NewRenderError("yearly trend line", err)
		}
		line.Color = Palette[0]
		line.Width = vg.Points(2)
		points.Color = Palette[0]
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(4)
		p.Add(line, points)

		texts := make([]string, len(pts))
		for i, pt := range pts {
			texts[i] = formatCount(pt.Y)
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: texts})
		if err != nil {
			return "", errors.NewRenderError("yearly trend labels", err)
		}
		labels.Offset = vg.Point{Y: vg.Points(10)}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(9)
			labels.TextStyle[i].XAlign = draw.XCenter
		}
		p.Add(labels)
		p.NominalX(years...)
		p.Y.Max *= 1.1
	}

	return r.savePlot(YearlyTrendFile, 12*vg.Inch, 6*vg.Inch, p)
}

// TopStates plots the ten largest states for yearCol as horizontal bars
func (r *Renderer) TopStates(t *table.Table, yearCol, title, filename string) (string, error) {
	if filename == "" {
		filename = TopStatesFile
	}
	p := newPlot(title, "Number of Accidents/Fatalities", "")

	if top, ok := dataprocessing.GetTopStates(t, yearCol, topStatesCount); ok {
		s := seriesFrom(top, config.StateColumn, yearCol, false, 0)
		if err := addHorizontalBars(p, s, barThickness(8*vg.Inch, s.len()), solid(Palette[0]), formatCount); err != nil {
			return "", errors.NewRenderError("top states bars", err)
		}
	}

	return r.savePlot(filename, 12*vg.Inch, 8*vg.Inch, p)
}

// CollisionTypes plots the first ten collision types by accident count next
// to a captioned placeholder panel
func (r *Renderer) CollisionTypes(t *table.Table) (string, error) {
	left := newPlot("Accidents by Collision Type", "", "")

	valueCol := firstNameContaining(t, "accident", "number")
	typeCol := firstNameContaining(t, "type", "collision")
	if valueCol != "" && typeCol != "" {
		s := seriesFrom(t, typeCol, valueCol, false, 10)
		if err := addHorizontalBars(left, s, barThickness(6*vg.Inch, s.len()), solid(Palette[0]), nil); err != nil {
			return "", errors.NewRenderError("collision type bars", err)
		}
	}

	right, err := placeholder("Fatalities by Collision Type")
	if err != nil {
		return "", errors.NewRenderError("collision placeholder", err)
	}

	return r.savePanels(CollisionTypesFile, 14*vg.Inch, 6*vg.Inch, "Collision Type Analysis", left, right)
}

// Violations plots the first fifteen complete rows of the first two columns
func (r *Renderer) Violations(t *table.Table) (string, error) {
	p := newPlot("Accidents by Traffic Violation Type", "Number of Accidents", "")

	if labelCol, valueCol, ok := firstTwoColumns(t); ok {
		s := seriesFrom(t, labelCol, valueCol, true, 15)
		if err := addHorizontalBars(p, s, barThickness(8*vg.Inch, s.len()), paletteAt, nil); err != nil {
			return "", errors.NewRenderError("violation bars", err)
		}
	}

	return r.savePlot(ViolationsFile, 14*vg.Inch, 8*vg.Inch, p)
}

// SafetyDevices plots the share of the first five rows and the counts of
// the first ten
func (r *Renderer) SafetyDevices(t *table.Table) (string, error) {
	left := newPlot("Safety Device Absence Distribution", "Share (%)", "")
	right := newPlot("Accidents by Safety Device Type", "", "")

	if labelCol, valueCol, ok := firstTwoColumns(t); ok {
		shares := seriesFrom(t, labelCol, valueCol, false, 5).shares()
		if err := addHorizontalBars(left, shares, barThickness(6*vg.Inch, shares.len()), paletteAt, formatPercent); err != nil {
			return "", errors.NewRenderError("safety device shares", err)
		}

		counts := seriesFrom(t, labelCol, valueCol, false, 10)
		if err := addHorizontalBars(right, counts, barThickness(6*vg.Inch, counts.len()), solid(Palette[1]), nil); err != nil {
			return "", errors.NewRenderError("safety device bars", err)
		}
	}

	return r.savePanels(SafetyDevicesFile, 14*vg.Inch, 6*vg.Inch, "Safety Device Analysis", left, right)
}

// RoadUsers plots each road user type's share of fatalities
func (r *Renderer) RoadUsers(t *table.Table) (string, error) {
	p := newPlot("Fatalities by Road User Type", "Share of Fatalities (%)", "")

	if labelCol, valueCol, ok := firstTwoColumns(t); ok {
		shares := seriesFrom(t, labelCol, valueCol, true, 0).shares()
		if err := addHorizontalBars(p, shares, barThickness(8*vg.Inch, shares.len()), paletteAt, formatPercent); err != nil {
			return "", errors.NewRenderError("road user shares", err)
		}
	}

	return r.savePlot(RoadUsersFile, 12*vg.Inch, 8*vg.Inch, p)
}

// StateComparison plots the top ten states by accidents and by fatalities for yearCol
func (r *Renderer) StateComparison(accidents, fatalities *table.Table, yearCol string) (string, error) {
	panels := []struct {
		table  *table.Table
		title  string
		xLabel string
		color  color.Color
	}{
		{accidents, "Top 10 States by Accidents", "Number of Accidents", Palette[0]},
		{fatalities, "Top 10 States by Fatalities", "Number of Fatalities", Palette[1]},
	}

	plots := make([]*plot.Plot, 0, len(panels))
	for _, panel := range panels {
		p := newPlot("", "", "")
		if panel.table != nil {
			if top, ok := dataprocessing.GetTopStates(panel.table, yearCol, topStatesCount); ok {
				p.Title.Text = panel.title
				p.X.Label.Text = panel.xLabel
				s := seriesFrom(top, config.StateColumn, yearCol, false, 0)
				if err := addHorizontalBars(p, s, barThickness(8*vg.Inch, s.len()), solid(panel.color), nil); err != nil {
					return "", errors.NewRenderError("state comparison bars", err)
				}
			}
		}
		plots = append(plots, p)
	}

	title := fmt.Sprintf("State-wise Comparison (%s)", yearCol)
	return r.savePanels(StateComparisonFile, 16*vg.Inch, 8*vg.Inch, title, plots...)
}

// Inputs carries the tables rendered by RenderAll. Optional tables may be nil.
type Inputs struct {
	Accidents     *table.Table
	Fatalities    *table.Table
	Collisions    *table.Table
	Violations    *table.Table
	SafetyDevices *table.Table
	RoadUsers     *table.Table
	// Years are the year columns to plot; the last one is the latest year
	Years []string
}

// RenderAll renders every chart whose inputs are available and returns the
// written paths. Rendering stops at the first error.
func (r *Renderer) RenderAll(ctx context.Context, in Inputs) ([]string, error) {
	var written []string
	render := func(name string, fn func() (string, error)) error {
		path, err := fn()
		if err != nil {
			r.logger.ErrorContext(ctx, "Chart failed", slog.String("chart", name), slog.String("error", err.Error()))
			return err
		}
		written = append(written, path)
		return nil
	}

	if in.Accidents != nil {
		years := in.Years
		if len(years) == 0 {
			years = in.Accidents.YearColumns()
		}
		title := "Road Accidents Trend"
		if len(years) > 0 {
			title = fmt.Sprintf("Road Accidents Trend (%s-%s)", years[0], years[len(years)-1])
		}
		if err := render("yearly_trend", func() (string, error) {
			return r.YearlyTrend(in.Accidents, years, title)
		}); err != nil {
			return written, err
		}

		if len(years) > 0 {
			latest := years[len(years)-1]
			if err := render("top_states", func() (string, error) {
				return r.TopStates(in.Accidents, latest, fmt.Sprintf("Top 10 States by Accidents (%s)", latest), TopStatesFile)
			}); err != nil {
				return written, err
			}
			if err := render("state_comparison", func() (string, error) {
				return r.StateComparison(in.Accidents, in.Fatalities, latest)
			}); err != nil {
				return written, err
			}
		}
	}

	optional := []struct {
		name  string
		table *table.Table
		fn    func(*table.Table) (string, error)
	}{
		{"collision_types", in.Collisions, r.CollisionTypes},
		{"violations", in.Violations, r.Violations},
		{"safety_devices", in.SafetyDevices, r.SafetyDevices},
		{"road_users", in.RoadUsers, r.RoadUsers},
	}
	for _, o := range optional {
		if o.table == nil {
			r.logger.DebugContext(ctx, "Chart skipped, no data", slog.String("chart", o.name))
			continue
		}
		t := o.table
		if err := render(o.name, func() (string, error) { return o.fn(t) }); err != nil {
			return written, err
		}
	}

	r.logger.InfoContext(ctx, "Charts rendered",
		slog.String("dir", r.dir),
		slog.Int("count", len(written)))
	return written, nil
}

// firstNameContaining returns the first column whose lower-cased name
// contains any of the substrings
func firstNameContaining(t *table.Table, substrings ...string) string {
	for _, name := range t.Names() {
		lower := strings.ToLower(name)
		for _, s := range substrings {
			if strings.Contains(lower, s) {
				return name
			}
		}
	}
	return ""
}
