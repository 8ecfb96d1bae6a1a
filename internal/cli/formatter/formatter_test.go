package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

func sampleGraph() roadmap.Graph {
	return roadmap.ToGraph(roadmap.Document{Roadmap: []roadmap.Phase{
		{Title: "Phase 1: Foundations", Topics: []roadmap.Topic{
			{Name: "Python Basics", EstimatedTime: "1 Week", Difficulty: roadmap.Beginner,
				SubSteps: []roadmap.SubStep{{Title: "Install Python"}, {Title: "Variables"}}},
			{Name: "Git", EstimatedTime: "3 Days", Difficulty: roadmap.Intermediate},
		}},
		{Title: "Phase 2: Data", Topics: []roadmap.Topic{{Name: "Pandas"}}},
	}})
}

func TestFormatRoadmap_PhaseTree(t *testing.T) {
	out := FormatRoadmap(sampleGraph())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Phase 1: Foundations")
	assert.Contains(t, lines[0], "2 topics")
	assert.Contains(t, lines[1], "├─ Python Basics")
	assert.Contains(t, lines[1], "Beginner")
	assert.Contains(t, lines[1], "1 Week")
	assert.Contains(t, lines[2], "│  ├─ Install Python")
	assert.Contains(t, lines[3], "│  └─ Variables")
	assert.Contains(t, lines[4], "└─ Git")
	assert.Contains(t, lines[5], "1 topic")
}

func TestFormatRoadmap_BadgesAligned(t *testing.T) {
	out := FormatRoadmap(sampleGraph())

	var cols []int
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "[ "); i >= 0 {
			cols = append(cols, lipgloss.Width(line[:i]))
		}
	}
	assert.NotEmpty(t, cols)
	for _, c := range cols {
		assert.Equal(t, cols[0], c)
	}
}

func TestFormatRoadmap_Nested(t *testing.T) {
	g := roadmap.NestedToGraph([]roadmap.NestedItem{
		{Name: "Web", SubSteps: []roadmap.NestedItem{
			{Name: "HTML"},
			{Name: "CSS", SubSteps: []roadmap.NestedItem{{Name: "Flexbox"}}},
		}},
	})

	out := FormatRoadmap(g)

	assert.Contains(t, out, "Web")
	assert.Contains(t, out, "├─ HTML")
	assert.Contains(t, out, "└─ CSS")
	assert.Contains(t, out, "│  └─ Flexbox")
}

func TestFormatRoadmap_Empty(t *testing.T) {
	assert.Contains(t, FormatRoadmap(roadmap.Graph{}), "empty roadmap")
}

func TestRoadmapSummary(t *testing.T) {
	assert.Contains(t, RoadmapSummary("Roadmap generation is complete!", true), "COMPLETE")
	assert.Contains(t, RoadmapSummary("Generated initial phase(s).", false), "IN PROGRESS")
}

func TestFormatTraces(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := []db.CallTrace{
		{RequestID: "0f8fad5b-d9cb-469f-a165-70867728950e", Attempt: 2, Backend: "ollama", Model: "llama3.2",
			LatencyMs: 120, Success: true, CreatedAt: now.Add(-5 * time.Minute)},
		{RequestID: "0f8fad5b-d9cb-469f-a165-70867728950e", Attempt: 1, Backend: "ollama", Model: "llama3.2",
			LatencyMs: 80, ErrorCode: "INVALID_OUTPUT", Error: "no JSON object found", CreatedAt: now.Add(-2 * time.Hour)},
	}

	out := FormatTraces(db.TraceSummary{Requests: 1, Calls: 2, Failures: 1, AvgLatencyMs: 100}, calls, now)

	assert.Contains(t, out, "COMPLETION TRACES")
	assert.Contains(t, out, "100ms avg")
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "0f8fad5b-d9cb")
	assert.Contains(t, out, "5m ago")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "INVALID_OUTPUT")
}

func TestFormatTraces_Empty(t *testing.T) {
	out := FormatTraces(db.TraceSummary{}, nil, time.Now())
	assert.Contains(t, out, "No completion attempts recorded yet.")
}

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable([]string{"A", "LONG HEADER"}, [][]string{{"wide cell", "x"}, {"y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[0], "LONG"), strings.Index(lines[2], "x"))
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"seconds", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-42 * time.Minute), "42m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-72 * time.Hour), "Feb 26, 2026 12:00"},
		{"future", now.Add(time.Hour), "Mar 1, 2026 13:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestampFrom(tt.in, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "héllo", Truncate("héllo", 0))
}

func TestDifficultyStyle(t *testing.T) {
	assert.Equal(t, StyleGreen.Render("x"), DifficultyStyle("beginner").Render("x"))
	assert.Equal(t, StyleRed.Render("x"), DifficultyStyle(roadmap.Advanced).Render("x"))
	assert.Equal(t, StyleDim.Render("x"), DifficultyStyle("Expert").Render("x"))
}
