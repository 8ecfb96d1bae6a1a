package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is the subset of a pgx pool the SQL backend needs.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SQLBackend runs completions as a warehouse SQL function call. The prompt
// is spliced into a query template, so both literals are escaped first.
type SQLBackend struct {
	db      RowQuerier
	model   string
	query   string
	timeout time.Duration
}

// NewSQLBackend creates a Backend that issues cfg.SQLQuery against db.
func NewSQLBackend(db RowQuerier, cfg LLMConfig) *SQLBackend {
	query := cfg.SQLQuery
	if query == "" {
		query = DefaultSQLQuery
	}
	return &SQLBackend{db: db, model: cfg.Model, query: query, timeout: cfg.Timeout()}
}

// EscapeSQLString doubles single quotes so value cannot terminate the
// surrounding string literal.
func EscapeSQLString(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// BuildSQLQuery fills the two %s verbs of tmpl with the escaped model and prompt.
func BuildSQLQuery(tmpl, model, prompt string) string {
	return fmt.Sprintf(tmpl, EscapeSQLString(model), EscapeSQLString(prompt))
}

func (b *SQLBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var text *string
	err := b.db.QueryRow(ctx, BuildSQLQuery(b.query, b.model, prompt)).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errors.New("completion query returned no rows")
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("completion query: %w", err)
	}
	if text == nil {
		return "", errors.New("completion query returned NULL")
	}
	return *text, nil
}

// Available pings the warehouse when the underlying pool supports it.
func (b *SQLBackend) Available(ctx context.Context) bool {
	p, ok := b.db.(interface{ Ping(context.Context) error })
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(ctx) == nil
}
