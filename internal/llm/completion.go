package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

// RetryPolicy bounds how often a completion is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy is three attempts with a fixed one second pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second}
}

// Completion is a model response whose "roadmap" list decoded cleanly.
// The raw items are kept alongside the decoded views.
type Completion struct {
	Roadmap  []json.RawMessage
	Attempts int

	shape  roadmap.Shape
	phases []roadmap.Phase
	graph  roadmap.Graph
}

// decodeCompletion decodes items as phases, and as nested items when the
// response uses that shape. Any decode failure is ErrInvalidOutput so the
// attempt is retried.
func decodeCompletion(items []json.RawMessage) (*Completion, error) {
	c := &Completion{Roadmap: items, shape: roadmap.DetectShape(items)}

	phases, err := roadmap.DecodePhases(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	c.phases = phases

	if c.shape == roadmap.ShapeNested {
		nested, err := roadmap.DecodeNested(items)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
		c.graph = roadmap.NestedToGraph(nested)
	} else {
		c.graph = roadmap.ToGraph(roadmap.Document{Roadmap: phases})
	}
	return c, nil
}

// Shape reports which roadmap schema the response uses.
func (c *Completion) Shape() roadmap.Shape {
	return c.shape
}

// Document returns the response read as flat phases.
func (c *Completion) Document() roadmap.Document {
	return roadmap.Document{Roadmap: c.phases}
}

// Graph returns the response as a graph built from whichever shape it has.
func (c *Completion) Graph() (roadmap.Graph, roadmap.Shape) {
	return c.graph, c.shape
}

// CompletionClient turns a prompt into a validated Completion, retrying the
// backend when it fails or answers with something that is not a roadmap.
type CompletionClient struct {
	backend  Backend
	kind     BackendKind
	model    string
	policy   RetryPolicy
	observer Observer
	logger   *slog.Logger
}

// ClientOption customises a CompletionClient.
type ClientOption func(*CompletionClient)

// WithObserver reports every attempt to o.
func WithObserver(o Observer) ClientOption {
	return func(c *CompletionClient) { c.observer = o }
}

// WithLogger sets the logger used for per-attempt lines.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *CompletionClient) { c.logger = l }
}

// WithBackendLabel tags observer events with the backend kind and model.
func WithBackendLabel(kind BackendKind, model string) ClientOption {
	return func(c *CompletionClient) {
		c.kind = kind
		c.model = model
	}
}

// NewCompletionClient wraps backend with the given retry policy.
func NewCompletionClient(backend Backend, policy RetryPolicy, opts ...ClientOption) *CompletionClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	c := &CompletionClient{
		backend:  backend,
		policy:   policy,
		observer: NoopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends prompt to the backend until a response carries a JSON
// object with a "roadmap" list that decodes as a roadmap, or the attempts
// run out.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		start := time.Now()
		comp, err := c.attempt(ctx, prompt)
		latency := time.Since(start)

		c.observer.OnCallComplete(CallEvent{
			RequestID: RequestIDFromContext(ctx),
			Backend:   c.kind,
			Model:     c.model,
			Attempt:   attempt,
			LatencyMs: latency.Milliseconds(),
			Success:   err == nil,
			ErrorCode: errorCode(err),
			Error:     errString(err),
		})

		if err == nil {
			c.logger.Info("completion attempt succeeded",
				"attempt", attempt,
				"max_attempts", c.policy.MaxAttempts,
				"phases", len(comp.Roadmap))
			comp.Attempts = attempt
			return comp, nil
		}

		lastErr = err
		c.logger.Warn("completion attempt failed",
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"error", err)

		if attempt == c.policy.MaxAttempts {
			break
		}
		if err := sleep(ctx, c.policy.Delay); err != nil {
			return nil, fmt.Errorf("%w: %v (last error: %v)", ErrTimeout, err, lastErr)
		}
	}

	return nil, &CompletionError{Attempts: c.policy.MaxAttempts, Last: lastErr}
}

func (c *CompletionClient) attempt(ctx context.Context, prompt string) (*Completion, error) {
	raw, err := c.backend.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	obj, err := ExtractJSON[map[string]json.RawMessage](raw, requireRoadmapList)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj["roadmap"], &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return decodeCompletion(items)
}

// Available reports whether the backend answers a reachability probe.
// Backends without a probe are assumed reachable.
func (c *CompletionClient) Available(ctx context.Context) bool {
	if p, ok := c.backend.(Prober); ok {
		return p.Available(ctx)
	}
	return true
}

func requireRoadmapList(obj map[string]json.RawMessage) error {
	val, ok := obj["roadmap"]
	if ok && bytes.HasPrefix(bytes.TrimSpace(val), []byte("[")) {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("AI response JSON did not contain the expected 'roadmap' list. Found keys: [%s]",
		strings.Join(keys, ", "))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// CompletionError is returned once every attempt has failed. Its message is
// safe to show to API clients.
type CompletionError struct {
	Attempts int
	Last     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("The AI model failed to generate a valid response. Last error: %s", errString(e.Last))
}

func (e *CompletionError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Last}
}

// IsRetryExhausted reports whether err came from a completion that never
// produced a usable response.
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrRetryExhausted)
}
