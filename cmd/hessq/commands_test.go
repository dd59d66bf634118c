package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/hessq/internal/config"
	"github.com/Veraticus/hessq/internal/ingest"
	"github.com/Veraticus/hessq/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starCSV = `Transaction ID,Amount ($),Latitude,Longitude,Timestamp
HUB,100,0,0,2025-07-01 08:00:00
A,100,5,0,2025-07-01 08:00:00
B,100,-5,0,2025-07-01 08:00:00
C,500,0,5,2025-07-01 08:00:00
`

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	config.SetDefaults(viper.GetViper())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerateCmd_Default(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	execute(t, generateCmd(), "--output", path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	txns, err := ingest.NewParser().ParseFile(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, txns, 10)
	assert.Equal(t, "T1", txns[0].ID)
	assert.Equal(t, "T10", txns[9].ID)
}

func TestGenerateCmd_SyntheticStdout(t *testing.T) {
	out := execute(t, generateCmd(), "--rows", "5", "--seed", "3")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.Join(ingest.Header(), ","), lines[0])

	again := execute(t, generateCmd(), "--rows", "5", "--seed", "3")
	assert.Equal(t, out, again)
}

func TestGraphCmd_PNG(t *testing.T) {
	output := filepath.Join(t.TempDir(), "graph.png")
	execute(t, graphCmd(), "--output", output, "--width", "800", "--height", "500")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestGraphCmd_JSONStdout(t *testing.T) {
	input := writeFile(t, "star.csv", starCSV)
	out := execute(t, graphCmd(), "--file", input, "--format", "json", "--output", "-")

	var payload render.GraphJSON
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Nodes, 4)
	assert.Len(t, payload.Edges, 3)
	assert.Equal(t, []string{"HUB"}, payload.Flagged)
}

func TestGraphCmd_ThresholdFlag(t *testing.T) {
	input := writeFile(t, "star.csv", starCSV)
	out := execute(t, graphCmd(), "--file", input, "--format", "json", "--output", "-", "--threshold", "6")

	var payload render.GraphJSON
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Edges, 2)
	assert.Empty(t, payload.Flagged)
	assert.InDelta(t, 6.0, payload.Threshold, 1e-9)
}

func TestGraphCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"--file", filepath.Join(t.TempDir(), "nope.csv"), "--output", "-"}},
		{name: "bad format", args: []string{"--format", "gif", "--output", "-"}},
		{name: "invalid threshold", args: []string{"--threshold", "0", "--output", "-"}},
		{name: "malformed csv", args: []string{"--file", writeFile(t, "bad.csv", "Transaction ID\nT1\n"), "--output", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.SetDefaults(viper.GetViper())
			cmd := graphCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.ExecuteContext(context.Background()))
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		output string
		want   render.Format
	}{
		{name: "default", want: render.FormatPNG},
		{name: "explicit", format: "svg", output: "graph.png", want: render.FormatSVG},
		{name: "from extension", output: "out/graph.SVG", want: render.FormatSVG},
		{name: "json extension", output: "graph.json", want: render.FormatJSON},
		{name: "stdout", output: "-", want: render.FormatPNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.format, tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveFormat("", "graph.gif")
	assert.ErrorIs(t, err, render.ErrUnsupportedFormat)
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, ":8501", displayAddr(":8501"))
	assert.Equal(t, ":8080", displayAddr("0.0.0.0:8080"))
	assert.Equal(t, ":9000", displayAddr("9000"))
}
