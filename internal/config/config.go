package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

// ViewerConfig tunes page presentation. CellAspect is the width/height
// ratio of one terminal cell; the default of 0.5 matches most monospace
// fonts.
type ViewerConfig struct {
	CellAspect      float64       `mapstructure:"cell_aspect"`
	HorizontalFill  float64       `mapstructure:"horizontal_fill"`
	VerticalPadding int           `mapstructure:"vertical_padding"`
	PageGap         int           `mapstructure:"page_gap"`
	ProximityMargin int           `mapstructure:"proximity_margin"`
	RenderMode      string        `mapstructure:"render_mode"`
	TurnDuration    time.Duration `mapstructure:"turn_duration"`
}

type KeyConfig struct {
	Modifier string `mapstructure:"modifier"`
	Profile  string `mapstructure:"profile"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".quire.db")
	logPath := filepath.Join(homeDir, ".quire", "quire.log")

	return &Config{
		Database: DatabaseConfig{
			Path:    dbPath,
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  logPath,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FFB454",
				Secondary:  "#7FD1B9",
				Accent:     "#95E1D3",
				Background: "#1A1B26",
				Surface:    "#24283B",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
		},
		Viewer: ViewerConfig{
			CellAspect:      0.5,
			HorizontalFill:  0.9,
			VerticalPadding: 1,
			PageGap:         1,
			ProximityMargin: 40,
			RenderMode:      "text",
			TurnDuration:    1 * time.Second,
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Profile:  "default",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("viewer", cfg.Viewer)
	v.SetDefault("keys", cfg.Keys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "quire")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("QUIRE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand paths after loading
	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand tilde
	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	// Convert to absolute path if not already absolute
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// expandPaths expands all paths in the config
func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Convert durations to strings for TOML readability
	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	viewerCfg := map[string]interface{}{
		"cell_aspect":      config.Viewer.CellAspect,
		"horizontal_fill":  config.Viewer.HorizontalFill,
		"vertical_padding": config.Viewer.VerticalPadding,
		"page_gap":         config.Viewer.PageGap,
		"proximity_margin": config.Viewer.ProximityMargin,
		"render_mode":      config.Viewer.RenderMode,
		"turn_duration":    config.Viewer.TurnDuration.String(),
	}

	v.Set("database", dbCfg)
	v.Set("log", config.Log)
	v.Set("ui", config.UI)
	v.Set("viewer", viewerCfg)
	v.Set("keys", config.Keys)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
