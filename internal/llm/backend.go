package llm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend sends a fully assembled prompt to a text-completion service and
// returns the raw response text. It owns transport concerns only.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

func (f BackendFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Prober is implemented by backends that can report reachability.
type Prober interface {
	Available(ctx context.Context) bool
}

// NewBackend builds the transport selected by cfg.Backend. The returned
// close function releases any connections and is never nil.
func NewBackend(ctx context.Context, cfg LLMConfig) (Backend, func(), error) {
	switch cfg.Backend {
	case BackendOllama, "":
		return NewOllamaBackend(cfg), func() {}, nil
	case BackendChat:
		return NewChatBackend(cfg), func() {}, nil
	case BackendSQL:
		if cfg.SQLDSN == "" {
			return nil, func() {}, fmt.Errorf("ROADMAPPER_SQL_DSN is required for the %q backend", BackendSQL)
		}
		pool, err := pgxpool.New(ctx, cfg.SQLDSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to completion warehouse: %w", err)
		}
		return NewSQLBackend(pool, cfg), pool.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown completion backend %q", cfg.Backend)
	}
}
