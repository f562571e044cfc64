package core

// preview.go draws a quick plan view of a submission: survey points from the
// coordinates table and straight pipe segments from the pipes table. It is a
// visual aid only and performs no validation; rows that cannot be plotted
// are counted in the summary and otherwise ignored.

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Column names read by the preview.
const (
	ColumnPointID    = "ID"
	ColumnX          = "X"
	ColumnY          = "Y"
	ColumnPipeStart  = "PK_INICIO"
	ColumnPipeEnd    = "PK_FIN"
	previewImageSize = 6 * vg.Inch
)

var (
	pointColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pipeColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PreviewSummary reports what the preview could draw.
type PreviewSummary struct {
	Points        int `json:"points"`
	SkippedPoints int `json:"skippedPoints"`
	Pipes         int `json:"pipes"`
	SkippedPipes  int `json:"skippedPipes"`
}

// RenderPreview writes a PNG plan view of sub to w.
func RenderPreview(w io.Writer, sub Submission) (PreviewSummary, error) {
	var summary PreviewSummary

	points := make(map[string]plotter.XY, len(sub.Coordenadas))
	xys := make(plotter.XYs, 0, len(sub.Coordenadas))
	for _, rec := range sub.Coordenadas {
		id, xy, ok := pointFromRecord(rec)
		if !ok {
			summary.SkippedPoints++
			continue
		}
		points[id] = xy
		xys = append(xys, xy)
	}
	summary.Points = len(xys)

	p := plot.New()
	p.Title.Text = "Coordinates and pipes"
	p.X.Label.Text = ColumnX
	p.Y.Label.Text = ColumnY
	p.Add(plotter.NewGrid())

	var pipeLegend bool
	for _, rec := range sub.Tuberias {
		start, okStart := lookupPoint(points, rec, ColumnPipeStart)
		end, okEnd := lookupPoint(points, rec, ColumnPipeEnd)
		if !okStart || !okEnd {
			summary.SkippedPipes++
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{start, end})
		if err != nil {
			summary.SkippedPipes++
			continue
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = pipeColor
		p.Add(line)
		if !pipeLegend {
			p.Legend.Add("Pipes", line)
			pipeLegend = true
		}
		summary.Pipes++
	}

	if len(xys) > 0 {
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return summary, fmt.Errorf("preview: points: %w", err)
		}
		scatter.GlyphStyle.Color = pointColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("Points", scatter)
	}

	wt, err := p.WriterTo(previewImageSize, previewImageSize, "png")
	if err != nil {
		return summary, fmt.Errorf("preview: render: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return summary, fmt.Errorf("preview: write: %w", err)
	}
	return summary, nil
}

func pointFromRecord(rec Record) (string, plotter.XY, bool) {
	raw, ok := rec.Get(ColumnPointID)
	id := pointKey(raw)
	if !ok || id == "" {
		return "", plotter.XY{}, false
	}
	x, okX := parseCoordinate(rec, ColumnX)
	y, okY := parseCoordinate(rec, ColumnY)
	if !okX || !okY {
		return "", plotter.XY{}, false
	}
	return id, plotter.XY{X: x, Y: y}, true
}

func parseCoordinate(rec Record, name string) (float64, bool) {
	raw, ok := rec.Get(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func lookupPoint(points map[string]plotter.XY, rec Record, column string) (plotter.XY, bool) {
	id, ok := rec.Get(column)
	if !ok {
		return plotter.XY{}, false
	}
	xy, ok := points[pointKey(id)]
	return xy, ok
}

// pointKey is the lookup key of a point ID. Integer IDs compare by value,
// so "01" and "1" name the same point; other IDs compare as trimmed text.
func pointKey(id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.Atoi(id); err == nil {
		return strconv.Itoa(n)
	}
	return id
}
