// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Drill    DrillConfig    `toml:"drill"`
	Goal     GoalConfig     `toml:"goal"`
	Feedback FeedbackConfig `toml:"feedback"`
	Storage  StorageConfig  `toml:"storage"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode       *string  `toml:"mode"`
	Time       *int     `toml:"time"`
	Words      *int     `toml:"words"`
	Caps       *bool    `toml:"caps"`
	Numbers    *bool    `toml:"numbers"`
	Symbols    *bool    `toml:"symbols"`
	CapsPct    *float64 `toml:"caps-pct"`
	NumbersPct *float64 `toml:"numbers-pct"`
	SymbolsPct *float64 `toml:"symbols-pct"`
	WordList   *string  `toml:"wordlist"`
}

// DrillConfig maps weak-key drill settings.
type DrillConfig struct {
	WeakTop        *int `toml:"weak-top"`
	RestartDelayMS *int `toml:"restart-delay-ms"`
}

// GoalConfig maps the daily goal.
type GoalConfig struct {
	Daily *int `toml:"daily"`
}

// FeedbackConfig maps the feedback endpoint.
type FeedbackConfig struct {
	URL *string `toml:"url"`
}

// StorageConfig maps the database location.
type StorageConfig struct {
	DB *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
