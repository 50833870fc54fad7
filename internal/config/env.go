package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by typeflow.
const (
	EnvDB          = "TYPEFLOW_DB"
	EnvFeedbackURL = "TYPEFLOW_FEEDBACK_URL"
	EnvDebug       = "TYPEFLOW_DEBUG"
)

// LoadEnv loads variables from a .env file without overriding ones already set.
// A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ResolveDBPath picks the database path: flag, then environment, then config file, then the XDG default.
func ResolveDBPath(flagValue string, file FileConfig) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvDB)); p != "" {
		return p
	}
	if file.Storage.DB != nil && strings.TrimSpace(*file.Storage.DB) != "" {
		return *file.Storage.DB
	}
	return DefaultDBPath()
}

// ResolveFeedbackURL prefers the environment over the config file.
func ResolveFeedbackURL(file FileConfig) string {
	if u := strings.TrimSpace(os.Getenv(EnvFeedbackURL)); u != "" {
		return u
	}
	if file.Feedback.URL != nil {
		return strings.TrimSpace(*file.Feedback.URL)
	}
	return ""
}

// DebugEnabled reports whether TUI debug logging was requested.
func DebugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDebug)))
	return v != "" && v != "0" && v != "false"
}
