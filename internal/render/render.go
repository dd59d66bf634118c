// Package render draws transaction graphs as PNG or SVG images and exports them as JSON.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/hessq/internal/graph"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the output encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// Render errors.
var (
	ErrEmptyGraph        = errors.New("graph has no nodes to render")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// DefaultCaption explains the node colouring below the PNG image.
const DefaultCaption = "Red nodes have multiple close connections and may indicate potential fraud."

var (
	colorSuspicious = drawing.Color{R: 255, G: 0, B: 0, A: 255}
	colorNormal     = drawing.Color{R: 135, G: 206, B: 235, A: 255}
	colorEdge       = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	colorLabel      = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	// Zero-alpha white; an all-zero color would fall back to the annotation defaults
	colorClear = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

// Options controls image size and decorations.
type Options struct {
	Title   string
	Width   int
	Height  int
	Caption bool
}

// DefaultOptions returns a 1000x600 image titled "Transaction Graph" with a caption.
func DefaultOptions() Options {
	return Options{
		Title:   "Transaction Graph",
		Width:   1000,
		Height:  600,
		Caption: true,
	}
}

// ParseFormat maps a user-supplied name (or file extension) to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type for the format.
func ContentType(f Format) string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	default:
		return "image/png"
	}
}

// Renderer draws graphs with fixed options.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	defaults := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.Title == "" {
		opts.Title = defaults.Title
	}
	return &Renderer{opts: opts}
}

// Render writes g to w in the requested format.
func (r *Renderer) Render(w io.Writer, g *graph.Graph, format Format) error {
	switch format {
	case FormatPNG:
		return r.RenderPNG(w, g)
	case FormatSVG:
		return r.RenderSVG(w, g)
	case FormatJSON:
		return WriteJSON(w, g)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// RenderPNG draws the graph as a PNG, adding the caption overlay when enabled.
func (r *Renderer) RenderPNG(w io.Writer, g *graph.Graph) error {
	ch, err := r.buildChart(g)
	if err != nil {
		return err
	}

	if !r.opts.Caption {
		if err := ch.Render(chart.PNG, w); err != nil {
			return fmt.Errorf("failed to render PNG: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render PNG: %w", err)
	}
	return drawCaption(&buf, w, DefaultCaption)
}

// RenderSVG draws the graph as an SVG document.
func (r *Renderer) RenderSVG(w io.Writer, g *graph.Graph) error {
	ch, err := r.buildChart(g)
	if err != nil {
		return err
	}
	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render SVG: %w", err)
	}
	return nil
}

// buildChart lays nodes out at (latitude, longitude), draws one gray segment per edge and
// colours nodes by suspicion.
func (r *Renderer) buildChart(g *graph.Graph) (*chart.Chart, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	series := make([]chart.Series, 0, len(g.Edges)+3)

	for _, e := range g.Edges {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		series = append(series, chart.ContinuousSeries{
			Style: chart.Style{
				StrokeWidth: 1.5,
				StrokeColor: colorEdge,
				DotWidth:    chart.Disabled,
			},
			XValues: []float64{from.Transaction.Latitude, to.Transaction.Latitude},
			YValues: []float64{from.Transaction.Longitude, to.Transaction.Longitude},
		})
	}

	var normal, suspicious chart.ContinuousSeries
	normal.Name = "normal"
	normal.Style = nodeStyle(colorNormal)
	suspicious.Name = "suspicious"
	suspicious.Style = nodeStyle(colorSuspicious)

	labels := chart.AnnotationSeries{
		Style: chart.Style{
			FillColor:   colorClear,
			StrokeColor: colorClear,
			FontColor:   colorLabel,
			FontSize:    10,
		},
	}

	for _, n := range g.Nodes {
		target := &normal
		if n.Suspicious {
			target = &suspicious
		}
		target.XValues = append(target.XValues, n.Transaction.Latitude)
		target.YValues = append(target.YValues, n.Transaction.Longitude)

		labels.Annotations = append(labels.Annotations, chart.Value2{
			XValue: n.Transaction.Latitude,
			YValue: n.Transaction.Longitude,
			Label:  n.ID(),
		})
	}

	// Series with no points fail chart validation
	if len(normal.XValues) > 0 {
		series = append(series, normal)
	}
	if len(suspicious.XValues) > 0 {
		series = append(series, suspicious)
	}
	series = append(series, labels)

	xr, yr := bounds(g)

	return &chart.Chart{
		Title:  r.opts.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 40},
		},
		XAxis: chart.XAxis{
			Name:  "Latitude",
			Range: xr,
		},
		YAxis: chart.YAxis{
			Name:  "Longitude",
			Range: yr,
		},
		Series: series,
	}, nil
}

func nodeStyle(color drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    12,
		DotColor:    color,
	}
}

// bounds returns padded axis ranges that keep every node away from the plot edge. A
// degenerate span (all nodes on one coordinate) is widened so the range is never zero.
func bounds(g *graph.Graph) (*chart.ContinuousRange, *chart.ContinuousRange) {
	first := g.Nodes[0].Transaction
	minX, maxX := first.Latitude, first.Latitude
	minY, maxY := first.Longitude, first.Longitude
	for _, n := range g.Nodes[1:] {
		minX = min(minX, n.Transaction.Latitude)
		maxX = max(maxX, n.Transaction.Latitude)
		minY = min(minY, n.Transaction.Longitude)
		maxY = max(maxY, n.Transaction.Longitude)
	}
	padX := max((maxX-minX)*0.1, 1)
	padY := max((maxY-minY)*0.1, 1)
	return &chart.ContinuousRange{Min: minX - padX, Max: maxX + padX},
		&chart.ContinuousRange{Min: minY - padY, Max: maxY + padY}
}
