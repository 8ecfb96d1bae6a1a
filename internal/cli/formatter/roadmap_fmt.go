package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

// FormatRoadmap renders a roadmap graph as a phase/topic/sub-step tree.
// Graphs produced from the nested name/sub_steps shape are rendered by
// their parent links instead.
func FormatRoadmap(g roadmap.Graph) string {
	if len(g.Nodes) == 0 {
		return Dim("(empty roadmap)") + "\n"
	}
	for _, n := range g.Nodes {
		if n.Parent != "" {
			return RenderTree(nestedItems(g))
		}
	}
	return RenderTree(phaseItems(roadmap.ToDocument(g)))
}

func phaseItems(doc roadmap.Document) []TreeItem {
	var items []TreeItem
	for _, phase := range doc.Roadmap {
		items = append(items, TreeItem{Title: phase.Title, Badge: pluralize(len(phase.Topics), "topic")})
		for ti, topic := range phase.Topics {
			items = append(items, TreeItem{
				Title:  topic.Name,
				Level:  1,
				IsLast: ti == len(phase.Topics)-1,
				Badge:  topicBadge(topic),
			})
			for si, step := range topic.SubSteps {
				items = append(items, TreeItem{
					Title:  step.Title,
					Level:  2,
					IsLast: si == len(topic.SubSteps)-1,
				})
			}
		}
	}
	return items
}

func nestedItems(g roadmap.Graph) []TreeItem {
	children := make(map[string][]roadmap.Node)
	var roots []roadmap.Node
	for _, n := range g.Nodes {
		if n.Parent == "" {
			roots = append(roots, n)
			continue
		}
		children[n.Parent] = append(children[n.Parent], n)
	}

	var items []TreeItem
	var walk func(n roadmap.Node, level int, last bool)
	walk = func(n roadmap.Node, level int, last bool) {
		items = append(items, TreeItem{Title: n.Data.Label, Level: level, IsLast: last})
		kids := children[n.ID]
		for i, k := range kids {
			walk(k, level+1, i == len(kids)-1)
		}
	}
	for _, r := range roots {
		walk(r, 0, false)
	}
	return items
}

func topicBadge(t roadmap.Topic) string {
	var parts []string
	if t.Difficulty != "" {
		parts = append(parts, DifficultyStyle(t.Difficulty).Render(string(t.Difficulty)))
	}
	if t.EstimatedTime != "" {
		parts = append(parts, StyleFg.Render(t.EstimatedTime))
	}
	return strings.Join(parts, Dim(" · "))
}

// RoadmapSummary is the one-line status printed after an operation.
func RoadmapSummary(message string, isComplete bool) string {
	status := StyleYellow.Render("● IN PROGRESS")
	if isComplete {
		status = StyleGreen.Render("✔ COMPLETE")
	}
	return fmt.Sprintf("%s  %s", status, StyleFg.Render(message))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
