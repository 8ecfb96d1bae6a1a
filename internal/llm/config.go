package llm

import (
	"os"
	"strconv"
	"time"
)

// BackendKind selects the completion transport.
type BackendKind string

const (
	BackendOllama BackendKind = "ollama"
	BackendSQL    BackendKind = "sql"
	BackendChat   BackendKind = "chat"
)

// DefaultSQLQuery is the warehouse completion query. The two %s verbs
// receive the escaped model name and prompt.
const DefaultSQLQuery = "SELECT SNOWFLAKE.CORTEX.COMPLETE('%s', '%s') AS response"

// LLMConfig holds all configuration for the completion subsystem.
type LLMConfig struct {
	Backend      BackendKind
	LogCalls     bool
	Endpoint     string
	Model        string
	TimeoutMs    int
	MaxAttempts  int
	RetryDelayMs int
	SQLDSN       string
	SQLQuery     string
}

// DefaultConfig returns an LLMConfig with sensible defaults.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Backend:      BackendOllama,
		LogCalls:     false,
		Endpoint:     "http://localhost:11434",
		Model:        "llama3.2",
		TimeoutMs:    120000,
		MaxAttempts:  3,
		RetryDelayMs: 1000,
		SQLQuery:     DefaultSQLQuery,
	}
}

// LoadConfig reads configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("ROADMAPPER_LLM_BACKEND"); v != "" {
		cfg.Backend = BackendKind(v)
		if cfg.Backend == BackendSQL {
			cfg.Model = "snowflake-arctic"
		}
	}
	if v := os.Getenv("ROADMAPPER_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ROADMAPPER_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("ROADMAPPER_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ROADMAPPER_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("ROADMAPPER_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("ROADMAPPER_LLM_RETRY_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RetryDelayMs = n
		}
	}
	if v := os.Getenv("ROADMAPPER_SQL_DSN"); v != "" {
		cfg.SQLDSN = v
	}
	if v := os.Getenv("ROADMAPPER_SQL_QUERY"); v != "" {
		cfg.SQLQuery = v
	}

	return cfg
}

// Timeout returns the per-call backend timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RetryPolicy returns the retry settings derived from the config.
func (c LLMConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		Delay:       time.Duration(c.RetryDelayMs) * time.Millisecond,
	}
}
