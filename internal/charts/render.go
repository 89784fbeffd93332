package charts

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// Palette is the color cycle shared by every chart
var Palette = []color.Color{
	hexColor(0x3498db),
	hexColor(0xe74c3c),
	hexColor(0x2ecc71),
	hexColor(0xf39c12),
	hexColor(0x9b59b6),
}

var numberPrinter = message.NewPrinter(language.English)

func hexColor(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}
}

// paletteAt cycles through the palette
func paletteAt(i int) color.Color {
	return Palette[i%len(Palette)]
}

func solid(c color.Color) func(int) color.Color {
	return func(int) color.Color { return c }
}

// formatCount renders a value rounded to an integer with thousands separators
func formatCount(v float64) string {
	return numberPrinter.Sprintf("%d", int64(math.Round(v)))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Renderer writes PNG charts into a directory
type Renderer struct {
	dir    string
	dpi    int
	logger *slog.Logger
}

// NewRenderer creates a renderer writing into dir at the given resolution.
// dpi <= 0 means config.DefaultChartDPI.
func NewRenderer(dir string, dpi int, logger *slog.Logger) *Renderer {
	if dpi <= 0 {
		dpi = config.DefaultChartDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dir:    dir,
		dpi:    dpi,
		logger: logger.With("component", "charts"),
	}
}

// Dir returns the output directory
func (r *Renderer) Dir() string {
	return r.dir
}

// saveFigure draws onto a white canvas of w x h and writes it as PNG
func (r *Renderer) saveFigure(filename string, w, h vg.Length, drawFn func(dc draw.Canvas)) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", errors.NewStorageError("failed to create chart directory "+r.dir, err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(r.dpi),
		vgimg.UseBackgroundColor(color.White),
	)
	drawFn(draw.New(c))

	path := filepath.Join(r.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.NewStorageError("failed to create "+path, err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return "", errors.NewRenderError("failed to encode "+filename, err)
	}

	r.logger.Debug("Chart saved", slog.String("path", path))
	return path, nil
}

// savePlot renders a single plot
func (r *Renderer) savePlot(filename string, w, h vg.Length, p *plot.Plot) (string, error) {
	return r.saveFigure(filename, w, h, func(dc draw.Canvas) {
		p.Draw(dc)
	})
}

// savePanels renders plots side by side under a common title
func (r *Renderer) savePanels(filename string, w, h vg.Length, title string, panels ...*plot.Plot) (string, error) {
	return r.saveFigure(filename, w, h, func(dc draw.Canvas) {
		titleStyle := plot.New().Title.TextStyle
		titleStyle.Font.Size = vg.Points(16)
		titleStyle.XAlign = draw.XCenter
		titleStyle.YAlign = draw.YTop

		pad := vg.Points(8)
		dc.FillText(titleStyle, vg.Point{X: dc.Center().X, Y: dc.Max.Y - pad}, title)

		body := draw.Crop(dc, 0, 0, 0, -(titleStyle.Height(title) + 2*pad))
		tiles := draw.Tiles{Rows: 1, Cols: len(panels), PadX: vg.Points(16), PadTop: pad, PadBottom: pad}
		canvases := plot.Align([][]*plot.Plot{panels}, tiles, body)
		for i, p := range panels {
			p.Draw(canvases[0][i])
		}
	})
}

// newPlot creates a plot with the shared title styling
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// placeholder returns an axis-less panel holding a centered caption
func placeholder(caption string) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{caption},
	})
	if err != nil {
		return nil, err
	}
	labels.TextStyle[0].Font.Size = vg.Points(12)
	labels.TextStyle[0].XAlign = draw.XCenter
	labels.TextStyle[0].YAlign = draw.YCenter
	p.Add(labels)
	return p, nil
}

// series is a labelled list of values in display order
type series struct {
	labels []string
	values []float64
}

func (s series) len() int {
	return len(s.labels)
}

// total sums the finite values
func (s series) total() float64 {
	var sum float64
	for _, v := range s.values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sum += v
		}
	}
	return sum
}

// shares converts values to percentages of the total
func (s series) shares() series {
	total := s.total()
	out := series{labels: s.labels, values: make([]float64, len(s.values))}
	for i, v := range s.values {
		if total == 0 || math.IsNaN(v) {
			out.values[i] = math.NaN()
			continue
		}
		out.values[i] = v / total * 100
	}
	return out
}

// seriesFrom pairs a label column with a numeric value column. With
// dropMissing, rows missing either cell are skipped. limit <= 0 keeps every
// row. A non-numeric value column yields an empty series.
func seriesFrom(t *table.Table, labelName, valueName string, dropMissing bool, limit int) series {
	labels, ok := t.Column(labelName)
	if !ok {
		return series{}
	}
	values, ok := t.Column(valueName)
	if !ok || values.Kind != table.Numeric {
		return series{}
	}

	var s series
	for r := 0; r < t.NumRows(); r++ {
		if limit > 0 && s.len() == limit {
			break
		}
		if dropMissing && (labels.IsMissing(r) || values.IsMissing(r)) {
			continue
		}
		s.labels = append(s.labels, labels.Format(r))
		s.values = append(s.values, values.Values[r])
	}
	return s
}

// firstTwoColumns returns the leading label and value column names
func firstTwoColumns(t *table.Table) (string, string, bool) {
	names := t.Names()
	if len(names) < 2 {
		return "", "", false
	}
	return names[0], names[1], true
}

// barThickness spreads n bars over a fraction of the figure extent
func barThickness(extent vg.Length, n int) vg.Length {
	if n < 1 {
		n = 1
	}
	return extent * 0.6 / vg.Length(n+2)
}

// addHorizontalBars draws one bar per entry with the first entry on top.
// Missing values leave an empty slot. valueLabel may be nil. An empty
// series leaves the plot untouched.
func addHorizontalBars(p *plot.Plot, s series, thickness vg.Length, colorAt func(int) color.Color, valueLabel func(float64) string) error {
	n := s.len()
	if n == 0 {
		return nil
	}
	names := make([]string, n)
	var xys plotter.XYs
	var texts []string

	for i := 0; i < n; i++ {
		y := float64(n - 1 - i)
		names[n-1-i] = s.labels[i]

		v := s.values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bars, err := plotter.NewBarChart(plotter.Values{v}, thickness)
		if err != nil {
			return err
		}
		bars.Horizontal = true
		bars.XMin = y
		bars.Color = colorAt(i)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		if valueLabel != nil {
			xys = append(xys, plotter.XY{X: v, Y: y})
			texts = append(texts, valueLabel(v))
		}
	}
	p.NominalY(names...)

	if len(xys) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return err
		}
		labels.Offset = vg.Point{X: vg.Points(4)}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(9)
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
		// leave room for the value labels
		if p.X.Max > 0 {
			p.X.Max *= 1.15
		}
	}
	return nil
}
