package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/roadmapper/internal/cli/formatter"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
)

// roadmapperHuhTheme applies the formatter palette to huh forms.
func roadmapperHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// goalForm asks for the learning goal and an optional resume path.
func goalForm(goal, resumePath *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What do you want to learn?").
				Description("Mention your current and target skill level if you know them.").
				Placeholder("I want to become a backend engineer. Current skill: beginner").
				Value(goal).
				Validate(validateGoal),
			huh.NewInput().
				Title("Resume (optional)").
				Placeholder("path/to/cv.pdf").
				Value(resumePath).
				Validate(validateResumePath),
		),
	).WithTheme(roadmapperHuhTheme()).WithShowHelp(false)
}

func validateGoal(s string) error {
	if ok, msg := intelligence.ValidatePrompt(s); !ok {
		return errors.New(msg)
	}
	return nil
}

func validateResumePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".pdf", ".docx":
		return nil
	}
	return errors.New("resume must be a .pdf or .docx file")
}
