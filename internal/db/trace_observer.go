package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/roadmapper/internal/llm"
)

// TraceObserver persists every completion attempt to a TraceStore.
// Write failures are logged and never reach the caller.
type TraceObserver struct {
	store   *TraceStore
	logger  *slog.Logger
	timeout time.Duration
}

// NewTraceObserver creates an llm.Observer backed by store.
func NewTraceObserver(store *TraceStore, logger *slog.Logger) *TraceObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraceObserver{store: store, logger: logger, timeout: 2 * time.Second}
}

func (o *TraceObserver) OnCallComplete(event llm.CallEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	err := o.store.Record(ctx, CallTrace{
		RequestID: event.RequestID,
		Backend:   string(event.Backend),
		Model:     event.Model,
		Attempt:   event.Attempt,
		LatencyMs: event.LatencyMs,
		Success:   event.Success,
		ErrorCode: event.ErrorCode,
		Error:     event.Error,
	})
	if err != nil {
		o.logger.Warn("recording completion trace failed", "error", err)
	}
}
