package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/Veraticus/hessq/internal/common"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/render"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by viper (HESSQ_GRAPH_THRESHOLD...).
const EnvPrefix = "HESSQ"

// EnvKeyReplacer maps nested keys to environment names: graph.threshold -> GRAPH_THRESHOLD.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// DefaultDatabasePath is used for the run history when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/hessq/hessq.db"

// Settings is the resolved application configuration.
type Settings struct {
	Server  ServerSettings
	History HistorySettings
	Render  render.Options
	Graph   graph.Config
}

// ServerSettings configures the browser upload UI.
type ServerSettings struct {
	Addr        string
	MaxUploadMB int
	MaxRows     int
	AccessLog   bool
}

// HistorySettings configures the optional run history.
type HistorySettings struct {
	DatabasePath string
	Enabled      bool
}

// SetDefaults registers every default value with v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("graph.threshold", graph.DefaultThreshold)
	v.SetDefault("graph.time_factor", graph.DefaultTimeFactor)
	v.SetDefault("graph.amount_factor", graph.DefaultAmountFactor)
	v.SetDefault("graph.degree_threshold", graph.DefaultDegreeThreshold)

	opts := render.DefaultOptions()
	v.SetDefault("render.width", opts.Width)
	v.SetDefault("render.height", opts.Height)
	v.SetDefault("render.caption", opts.Caption)

	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.max_rows", 5000)
	v.SetDefault("server.access_log", false)

	v.SetDefault("history.enabled", false)
	v.SetDefault("database.path", DefaultDatabasePath)
}

// LoadEnvFiles loads .env style files into the process environment. Missing files are not
// an error; variables already set in the environment win.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("No env file found", "path", p)
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		slog.Debug("Loaded env file", "path", p)
	}
	return nil
}

// Load resolves Settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Graph: graph.Config{
			Threshold:       v.GetFloat64("graph.threshold"),
			TimeFactor:      v.GetFloat64("graph.time_factor"),
			AmountFactor:    v.GetFloat64("graph.amount_factor"),
			DegreeThreshold: v.GetInt("graph.degree_threshold"),
		},
		Render: render.Options{
			Width:   v.GetInt("render.width"),
			Height:  v.GetInt("render.height"),
			Caption: v.GetBool("render.caption"),
		},
		Server: ServerSettings{
			Addr:        v.GetString("server.addr"),
			MaxUploadMB: v.GetInt("server.max_upload_mb"),
			MaxRows:     v.GetInt("server.max_rows"),
			AccessLog:   v.GetBool("server.access_log"),
		},
		History: HistorySettings{
			Enabled:      v.GetBool("history.enabled"),
			DatabasePath: ExpandPath(v.GetString("database.path")),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the resolved settings.
func (s *Settings) Validate() error {
	if err := s.Graph.Validate(); err != nil {
		return err
	}
	if s.Render.Width <= 0 || s.Render.Height <= 0 {
		return fmt.Errorf("%w: render size must be positive, got %dx%d",
			common.ErrInvalidConfig, s.Render.Width, s.Render.Height)
	}
	if s.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: server.max_upload_mb must be positive", common.ErrInvalidConfig)
	}
	if s.Server.MaxRows <= 0 {
		return fmt.Errorf("%w: server.max_rows must be positive", common.ErrInvalidConfig)
	}
	if s.History.Enabled && s.History.DatabasePath == "" {
		return fmt.Errorf("%w: database.path is required when history is enabled", common.ErrMissingConfig)
	}
	return nil
}
