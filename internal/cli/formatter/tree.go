package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is a single line of a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Badge is rendered right-aligned in brackets. It may carry styling.
	Badge string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree with box-drawing
// connectors. Level 0 items are headers. Badges are right-aligned to the
// widest line.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type line struct {
		content string
		badge   string
	}

	lines := make([]line, len(items))
	width := 0

	for i, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch item.Level {
		case 0:
			title = StyleHeader.Render(title)
		case 1:
			title = StyleBold.Render(title)
		default:
			title = StyleFg.Render(title)
		}

		lines[i].content = Dim(prefix) + title
		if item.Badge != "" {
			lines[i].badge = StyleBlue.Render("[ ") + item.Badge + StyleBlue.Render(" ]")
		}
		if w := lipgloss.Width(lines[i].content); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, l := range lines {
		if l.badge == "" {
			b.WriteString(l.content + "\n")
			continue
		}
		pad := max(width-lipgloss.Width(l.content), 0)
		fmt.Fprintf(&b, "%s%s  %s\n", l.content, strings.Repeat(" ", pad), l.badge)
	}
	return b.String()
}
