package config

import "time"

// TestConfig returns a config suitable for testing. Database.Path is
// left empty; tests that need a real store open one under t.TempDir().
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    "",
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "error",
			File:  "",
		},
		UI:     defaultConfig().UI,
		Viewer: defaultConfig().Viewer,
		Keys:   defaultConfig().Keys,
	}
}
