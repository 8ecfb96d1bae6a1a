package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_RetryPolicy(t *testing.T) {
	p := DefaultConfig().RetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Delay)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ROADMAPPER_LLM_BACKEND", "sql")
	t.Setenv("ROADMAPPER_LLM_MAX_ATTEMPTS", "5")
	t.Setenv("ROADMAPPER_LLM_RETRY_DELAY_MS", "0")
	t.Setenv("ROADMAPPER_SQL_DSN", "postgres://localhost/db")

	cfg := LoadConfig()

	assert.Equal(t, BackendSQL, cfg.Backend)
	assert.Equal(t, "snowflake-arctic", cfg.Model)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.RetryPolicy().Delay)
	assert.Equal(t, "postgres://localhost/db", cfg.SQLDSN)
	assert.Equal(t, DefaultSQLQuery, cfg.SQLQuery)
}

func TestLoadConfig_ExplicitModelWinsOverBackendDefault(t *testing.T) {
	t.Setenv("ROADMAPPER_LLM_BACKEND", "sql")
	t.Setenv("ROADMAPPER_LLM_MODEL", "mistral-large")

	assert.Equal(t, "mistral-large", LoadConfig().Model)
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("ROADMAPPER_LLM_MAX_ATTEMPTS", "zero")
	t.Setenv("ROADMAPPER_LLM_TIMEOUT_MS", "-1")

	cfg := LoadConfig()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 120000, cfg.TimeoutMs)
}
