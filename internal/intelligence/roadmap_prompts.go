package intelligence

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const initialRoadmapPrompt = `
You are a world-class expert curriculum and career path designer. Your task is to generate a comprehensive, professional, and actionable learning roadmap based on the user's request.

*USER'S GOAL:*
{{.Goal}}

*USER'S BACKGROUND (from resume, if provided):*
{{.Resume}}

*CRITICAL INSTRUCTIONS:*
1.  *TONE AND STYLE:* Be concise, crisp, and informative. Avoid verbose explanations. Get straight to the point.
2.  *STRUCTURE:* Organize the roadmap into logical phases (e.g., "Phase 1: Foundational Skills", "Phase 2: Core Competencies", "Phase 3: Advanced Specialization").
3.  *CONTENT:*
    * Each phase must contain 5-6 major topics.
    * Each topic must include an estimated_time ("1 Week", "2 Weeks", etc.) and a difficulty level ("Beginner", "Intermediate", "Advanced").
    * Each topic must have 3-8 granular, actionable sub_steps.
    * Each sub_step must only have a title. Do NOT include a description or project_idea.
4.  *COMPLETENESS:* The roadmap must be complete. Generate ALL phases required to get the user from their current skill to their target skill. Do not generate an incomplete plan. For a Beginner to Expert path, this usually means at least 3-4 distinct phases.
5.  *OUTPUT FORMAT:*
    * Your ENTIRE response MUST be a single, raw, valid JSON object and nothing else.
    * Do NOT include any explanatory text, markdown, or comments outside of the JSON structure.
    * Adhere strictly to the JSON schema provided below.

*REQUIRED JSON SCHEMA:*
json
{
  "roadmap": [
    {
      "phase": "Phase Title (e.g., Phase 1: Foundations)",
      "topics": [
        {
          "topic": "Topic Name (e.g., Introduction to Cloud Computing)",
          "estimated_time": "1 Week",
          "difficulty": "Beginner",
          "sub_steps": [
            {
              "title": "Understand the Core Concepts of IaaS, PaaS, SaaS"
            }
          ]
        }
      ]
    }
  ]
}
`

const refinementRoadmapPrompt = `
You are a world-class expert curriculum and career path designer. Your task is to intelligently modify the provided JSON learning roadmap based on a user's command.

*INSTRUCTIONS:*
1.  *Analyze:* Read the user's command and the current JSON roadmap.
2.  *Modify:* Update the JSON by adding, removing, or changing phases, topics, or sub-steps as requested. Ensure the final roadmap remains logical and professional.
3.  *Maintain Structure:* Preserve the original JSON schema in your response. Do not add description or project_idea fields.
4.  *OUTPUT FORMAT:*
    * Your ENTIRE response MUST be the complete, updated, raw, valid JSON object.
    * Do NOT include any explanations, markdown, or comments outside of the JSON structure.

*CURRENT ROADMAP:*
json
{{.Roadmap}}


*USER'S MODIFICATION COMMAND:*
"{{.Command}}"

Now, provide the complete and modified JSON object that reflects the user's request.
`

const continuationRoadmapPrompt = `
You are a world-class expert curriculum and career path designer. Your task is to continue generating a learning roadmap based on the JSON provided. The user wants the next logical phase of their learning plan.

*CRITICAL INSTRUCTIONS:*
1.  *Analyze:* Review the last phase and topic in the provided JSON to understand the context.
2.  *Generate:* Create the next single logical phase that should follow the existing roadmap. If you determine there are no more logical phases to add to complete the journey to 'expert', return an empty list for the "roadmap" key.
3.  *Maintain Style:* Keep the tone concise and crisp. Sub-steps must only have a title.
4.  *OUTPUT FORMAT:*
    * Your ENTIRE response MUST be a single, raw, valid JSON object.
    * If generating a new phase, it must be wrapped in a "roadmap" list.
    * If the roadmap is complete, respond with {"roadmap": []}.
    * Do NOT repeat the existing roadmap. Your response should only contain the new phase or be empty.

*EXISTING ROADMAP (for context):*
json
{{.Roadmap}}


*REQUIRED JSON SCHEMA FOR YOUR RESPONSE (new phase only):*
json
{
  "roadmap": [
    {
      "phase": "Phase Title (e.g., Phase 4: DevOps & Automation)",
      "topics": [
        {
          "topic": "Topic Name",
          "estimated_time": "Time",
          "difficulty": "Difficulty",
          "sub_steps": [
            {
              "title": "Sub-step title"
            }
          ]
        }
      ]
    }
  ]
}

Now, generate only the next phase, or an empty roadmap list if complete, as a single JSON object.
`

// PromptSet is the raw text of the three roadmap prompt templates. Fields
// use text/template syntax: {{.Goal}} and {{.Resume}} for the initial
// prompt, {{.Roadmap}} and {{.Command}} for refinement, {{.Roadmap}} for
// continuation.
type PromptSet struct {
	Initial      string `yaml:"initial"`
	Refinement   string `yaml:"refinement"`
	Continuation string `yaml:"continuation"`
}

// DefaultPromptSet returns the built-in templates.
func DefaultPromptSet() PromptSet {
	return PromptSet{
		Initial:      initialRoadmapPrompt,
		Refinement:   refinementRoadmapPrompt,
		Continuation: continuationRoadmapPrompt,
	}
}

// Prompts holds the parsed templates.
type Prompts struct {
	initial      *template.Template
	refinement   *template.Template
	continuation *template.Template
}

type initialPromptData struct {
	Goal   string
	Resume string
}

type refinementPromptData struct {
	Roadmap string
	Command string
}

type continuationPromptData struct {
	Roadmap string
}

// ParsePrompts compiles set. Empty fields fall back to the built-in text.
func ParsePrompts(set PromptSet) (*Prompts, error) {
	def := DefaultPromptSet()
	if strings.TrimSpace(set.Initial) == "" {
		set.Initial = def.Initial
	}
	if strings.TrimSpace(set.Refinement) == "" {
		set.Refinement = def.Refinement
	}
	if strings.TrimSpace(set.Continuation) == "" {
		set.Continuation = def.Continuation
	}

	var p Prompts
	var err error
	if p.initial, err = parsePrompt("initial", set.Initial, initialPromptData{}); err != nil {
		return nil, err
	}
	if p.refinement, err = parsePrompt("refinement", set.Refinement, refinementPromptData{}); err != nil {
		return nil, err
	}
	if p.continuation, err = parsePrompt("continuation", set.Continuation, continuationPromptData{}); err != nil {
		return nil, err
	}
	return &p, nil
}

// parsePrompt parses text and dry-runs it against a zero value of the data
// type so an unknown field fails at load time instead of per request.
func parsePrompt(name, text string, sample any) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s prompt: %w", name, err)
	}
	if err := t.Execute(&strings.Builder{}, sample); err != nil {
		return nil, fmt.Errorf("checking %s prompt: %w", name, err)
	}
	return t, nil
}

// DefaultPrompts returns the built-in templates, parsed.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts(DefaultPromptSet())
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPrompts reads a YAML prompt override file. Keys left out keep the
// built-in templates. An empty path returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}
	var set PromptSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}
	return ParsePrompts(set)
}

func (p *Prompts) Initial(goal, resume string) (string, error) {
	return render(p.initial, initialPromptData{Goal: goal, Resume: resume})
}

func (p *Prompts) Refinement(roadmapJSON, command string) (string, error) {
	return render(p.refinement, refinementPromptData{Roadmap: roadmapJSON, Command: command})
}

func (p *Prompts) Continuation(roadmapJSON string) (string, error) {
	return render(p.continuation, continuationPromptData{Roadmap: roadmapJSON})
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
