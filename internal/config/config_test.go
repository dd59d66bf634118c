package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/hessq/internal/common"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, graph.DefaultConfig(), s.Graph)
	assert.Equal(t, 1000, s.Render.Width)
	assert.Equal(t, 600, s.Render.Height)
	assert.True(t, s.Render.Caption)
	assert.Equal(t, ":8501", s.Server.Addr)
	assert.Equal(t, 10, s.Server.MaxUploadMB)
	assert.Equal(t, 5000, s.Server.MaxRows)
	assert.False(t, s.Server.AccessLog)
	assert.False(t, s.History.Enabled)
	assert.NotContains(t, s.History.DatabasePath, "$HOME")
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("graph.threshold", 6.5)
	v.Set("graph.degree_threshold", 1)
	v.Set("render.caption", false)
	v.Set("history.enabled", true)
	v.Set("database.path", "/tmp/hessq-test.db")

	s, err := Load(v)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, s.Graph.Threshold, 1e-9)
	assert.Equal(t, 1, s.Graph.DegreeThreshold)
	assert.False(t, s.Render.Caption)
	assert.True(t, s.History.Enabled)
	assert.Equal(t, "/tmp/hessq-test.db", s.History.DatabasePath)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HESSQ_GRAPH_THRESHOLD", "4")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer())
	v.AutomaticEnv()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, s.Graph.Threshold, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		wantErr error
		key     string
		value   any
		name    string
	}{
		{name: "zero threshold", key: "graph.threshold", value: 0, wantErr: graph.ErrInvalidConfig},
		{name: "negative time factor", key: "graph.time_factor", value: -1, wantErr: graph.ErrInvalidConfig},
		{name: "zero width", key: "render.width", value: 0, wantErr: common.ErrInvalidConfig},
		{name: "zero upload size", key: "server.max_upload_mb", value: 0, wantErr: common.ErrInvalidConfig},
		{name: "zero row limit", key: "server.max_rows", value: 0, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_HistoryNeedsPath(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("history.enabled", true)
	v.Set("database.path", "")

	_, err := Load(v)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HESSQ_TEST_FROM_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("HESSQ_TEST_FROM_DOTENV") })

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("HESSQ_TEST_FROM_DOTENV"))
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HESSQ_TEST_PRESET=from-file\n"), 0o600))
	t.Setenv("HESSQ_TEST_PRESET", "from-env")

	require.NoError(t, LoadEnvFiles(envFile))
	assert.Equal(t, "from-env", os.Getenv("HESSQ_TEST_PRESET"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HESSQ_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/hessq.db", want: filepath.Join(home, "hessq.db")},
		{input: "$HESSQ_TEST_DIR/hessq.db", want: "/data/hessq.db"},
		{input: "/abs/path.db", want: "/abs/path.db"},
		{input: "relative.db", want: "relative.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths, filepath.Join("/xdg", "hessq"))
	assert.Equal(t, ".", paths[len(paths)-1])
}
