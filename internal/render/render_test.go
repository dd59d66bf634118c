package render

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/hessq/internal/demo"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(context.Background(), demo.DefaultTransactions())
	require.NoError(t, err)
	return g
}

func starGraph(t *testing.T) *graph.Graph {
	t.Helper()
	at := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	txn := func(id string, lat, lon float64, amount int64) model.Transaction {
		return model.Transaction{ID: id, Latitude: lat, Longitude: lon, Amount: decimal.NewFromInt(amount), Timestamp: at}
	}
	g, err := graph.Build(context.Background(), []model.Transaction{
		txn("HUB", 0, 0, 100),
		txn("A", 5, 0, 100),
		txn("B", -5, 0, 100),
		txn("C", 0, 5, 500),
	})
	require.NoError(t, err)
	return g
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		width  int
		height int
	}{
		{name: "defaults", opts: DefaultOptions(), width: 1000, height: 600},
		{name: "custom size without caption", opts: Options{Width: 640, Height: 480}, width: 640, height: 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewRenderer(tt.opts).RenderPNG(&buf, defaultGraph(t)))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.width, img.Bounds().Dx())
			assert.Equal(t, tt.height, img.Bounds().Dy())
		})
	}
}

func TestRenderPNG_CaptionChangesImage(t *testing.T) {
	g := starGraph(t)

	withCaption := DefaultOptions()
	withoutCaption := DefaultOptions()
	withoutCaption.Caption = false

	var a, b bytes.Buffer
	require.NoError(t, NewRenderer(withCaption).RenderPNG(&a, g))
	require.NoError(t, NewRenderer(withoutCaption).RenderPNG(&b, g))
	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(DefaultOptions()).RenderSVG(&buf, defaultGraph(t)))

	svg := buf.String()
	assert.True(t, strings.Contains(svg, "<svg"))
	assert.Contains(t, svg, "Transaction Graph")
	assert.Contains(t, svg, "T1")
	assert.Contains(t, svg, "T10")
}

func TestRender_Formats(t *testing.T) {
	g := starGraph(t)
	r := NewRenderer(DefaultOptions())

	for _, f := range []Format{FormatPNG, FormatSVG, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, g, f), f)
		assert.NotZero(t, buf.Len(), f)
	}

	err := r.Render(&bytes.Buffer{}, g, Format("gif"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRender_EmptyGraph(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	empty, err := graph.Build(context.Background(), nil)
	require.NoError(t, err)

	for _, f := range []Format{FormatPNG, FormatSVG, FormatJSON} {
		assert.ErrorIs(t, r.Render(&bytes.Buffer{}, empty, f), ErrEmptyGraph, f)
	}
	assert.ErrorIs(t, r.RenderPNG(&bytes.Buffer{}, nil), ErrEmptyGraph)
}

func TestRender_SinglePoint(t *testing.T) {
	g, err := graph.Build(context.Background(), demo.DefaultTransactions()[:1])
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(DefaultOptions()).RenderPNG(&buf, g))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, starGraph(t)))

	var got GraphJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Nodes, 4)
	assert.Equal(t, "HUB", got.Nodes[0].ID)
	assert.Equal(t, 3, got.Nodes[0].Degree)
	assert.True(t, got.Nodes[0].Suspicious)
	assert.Equal(t, graph.ColorSuspicious, got.Nodes[0].Color)
	assert.Equal(t, graph.ColorNormal, got.Nodes[1].Color)
	assert.Equal(t, "500", got.Nodes[3].Amount)

	require.Len(t, got.Edges, 3)
	assert.Equal(t, EdgeJSON{From: "HUB", To: "A", Weight: 5}, got.Edges[0])
	assert.Equal(t, []string{"HUB"}, got.Flagged)
	assert.InDelta(t, graph.DefaultThreshold, got.Threshold, 1e-9)
	assert.Equal(t, graph.DefaultDegreeThreshold, got.DegreeThreshold)
}

func TestToJSON_NoFlagsIsEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, defaultGraph(t)))
	assert.Contains(t, buf.String(), `"flagged": []`)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatPNG},
		{input: "png", want: FormatPNG},
		{input: "PNG", want: FormatPNG},
		{input: ".svg", want: FormatSVG},
		{input: " json ", want: FormatJSON},
		{input: "gif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType(FormatPNG))
	assert.Equal(t, "image/svg+xml", ContentType(FormatSVG))
	assert.Equal(t, "application/json", ContentType(FormatJSON))
}

func TestNewRenderer_FillsDefaults(t *testing.T) {
	r := NewRenderer(Options{})
	assert.Equal(t, 1000, r.opts.Width)
	assert.Equal(t, 600, r.opts.Height)
	assert.Equal(t, "Transaction Graph", r.opts.Title)
	assert.False(t, r.opts.Caption)
}
