package cli

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds process-level settings. Completion backend settings live
// in llm.LLMConfig.
type Config struct {
	Addr        string
	TraceDB     string
	PromptsFile string
	MaxUploadMB int
	LogFormat   string
	LogLevel    string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        ":5001",
		MaxUploadMB: 10,
		LogFormat:   "text",
		LogLevel:    "info",
	}
}

// LoadConfig reads configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ROADMAPPER_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.TraceDB = os.Getenv("ROADMAPPER_TRACE_DB")
	cfg.PromptsFile = os.Getenv("ROADMAPPER_PROMPTS_FILE")
	if v := os.Getenv("ROADMAPPER_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxUploadMB = n
		}
	}
	if v := os.Getenv("ROADMAPPER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ROADMAPPER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
