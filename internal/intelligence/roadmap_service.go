package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

const (
	defaultResumeText = "Not provided."

	// completePhaseCount is how many phases an initial roadmap needs
	// before it is reported as complete.
	completePhaseCount = 3

	msgGeneratedComplete = "Successfully generated the complete roadmap."
	msgGeneratedPartial  = "Generated initial phase(s)."
	msgContinueDone      = "Roadmap generation is complete!"
	msgContinuePrefix    = "Generated phase: "
)

// Completer produces a validated roadmap completion for a prompt.
// *llm.CompletionClient satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*llm.Completion, error)
}

// Result is the outcome of a roadmap operation.
type Result struct {
	Graph      roadmap.Graph
	Message    string
	IsComplete bool

	// Phases is the number of phases the model returned for this call.
	Phases int
	// Unchanged is set when Graph is the caller's input returned as-is.
	Unchanged bool
}

// RoadmapService turns learning goals and chat commands into roadmap graphs.
type RoadmapService interface {
	// Generate builds a fresh roadmap for goal. resumeText may be empty.
	Generate(ctx context.Context, goal, resumeText string) (*Result, error)

	// Refine applies a natural-language change to current.
	Refine(ctx context.Context, message string, current *roadmap.Graph) (*Result, error)

	// Continue asks for the next phase after current.
	Continue(ctx context.Context, current *roadmap.Graph) (*Result, error)
}

type roadmapService struct {
	client  Completer
	prompts *Prompts
	logger  *slog.Logger
}

// NewRoadmapService creates a RoadmapService. A nil prompts uses the
// built-in templates.
func NewRoadmapService(client Completer, prompts *Prompts, logger *slog.Logger) RoadmapService {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &roadmapService{client: client, prompts: prompts, logger: logger}
}

func (s *roadmapService) Generate(ctx context.Context, goal, resumeText string) (*Result, error) {
	if err := checkPrompt(goal); err != nil {
		return nil, err
	}
	goal = withSkillContext(goal)
	if strings.TrimSpace(resumeText) == "" {
		resumeText = defaultResumeText
	}

	prompt, err := s.prompts.Initial(goal, resumeText)
	if err != nil {
		return nil, err
	}

	c, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating roadmap: %w", err)
	}
	doc := c.Document()
	phases := len(doc.Roadmap)
	res := &Result{
		Graph:      roadmap.ToGraph(doc),
		Phases:     phases,
		IsComplete: phases >= completePhaseCount,
		Message:    msgGeneratedPartial,
	}
	if res.IsComplete {
		res.Message = msgGeneratedComplete
	}
	s.logger.Info("roadmap generated", "phases", phases, "attempts", c.Attempts, "complete", res.IsComplete)
	return res, nil
}

func (s *roadmapService) Refine(ctx context.Context, message string, current *roadmap.Graph) (*Result, error) {
	if err := checkPrompt(message); err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrMissingRoadmap
	}

	docJSON, err := compactJSON(roadmap.ToDocument(*current))
	if err != nil {
		return nil, fmt.Errorf("encoding current roadmap: %w", err)
	}
	prompt, err := s.prompts.Refinement(docJSON, message)
	if err != nil {
		return nil, err
	}

	c, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("refining roadmap: %w", err)
	}

	// Some models answer in the nested name/sub_steps shape. It is
	// converted here so callers only ever see graphs.
	g, shape := c.Graph()

	s.logger.Info("roadmap refined", "shape", shape.String(), "phases", len(c.Roadmap), "attempts", c.Attempts)
	return &Result{
		Graph:      g,
		Phases:     len(c.Roadmap),
		Message:    roadmap.DiffSummary(*current, g),
		IsComplete: true,
	}, nil
}

func (s *roadmapService) Continue(ctx context.Context, current *roadmap.Graph) (*Result, error) {
	if current == nil {
		return nil, ErrMissingRoadmap
	}

	doc := roadmap.ToDocument(*current)
	docJSON, err := compactJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding current roadmap: %w", err)
	}
	prompt, err := s.prompts.Continuation(docJSON)
	if err != nil {
		return nil, err
	}

	c, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("continuing roadmap: %w", err)
	}

	if len(c.Roadmap) == 0 {
		s.logger.Info("roadmap continuation finished", "attempts", c.Attempts)
		return &Result{
			Graph:      *current,
			Message:    msgContinueDone,
			IsComplete: true,
			Unchanged:  true,
		}, nil
	}

	next := c.Document()
	doc.Roadmap = append(doc.Roadmap, next.Roadmap...)

	s.logger.Info("roadmap continued", "new_phases", len(next.Roadmap), "attempts", c.Attempts)
	return &Result{
		Graph:      roadmap.ToGraph(doc),
		Phases:     len(next.Roadmap),
		Message:    msgContinuePrefix + next.Roadmap[0].Title,
		IsComplete: false,
	}, nil
}

// compactJSON encodes v without HTML escaping so "&" and "<" reach the
// model verbatim.
func compactJSON(v any) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// withSkillContext appends default skill levels the goal does not mention.
func withSkillContext(goal string) string {
	lower := strings.ToLower(goal)
	if !strings.Contains(lower, "current skill:") {
		goal += "\nCurrent Skill: Beginner"
	}
	if !strings.Contains(lower, "target skill:") {
		goal += "\nTarget Skill: Expert"
	}
	return goal
}
