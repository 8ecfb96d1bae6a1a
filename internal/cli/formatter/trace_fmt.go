package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmapper/internal/db"
)

// FormatTraces renders the trace summary box followed by the most recent
// completion attempts, newest first.
func FormatTraces(sum db.TraceSummary, calls []db.CallTrace, now time.Time) string {
	var b strings.Builder

	stats := fmt.Sprintf("%s requests   %s attempts   %s failed   %s avg",
		Bold(fmt.Sprint(sum.Requests)),
		Bold(fmt.Sprint(sum.Calls)),
		failureCount(sum.Failures),
		Bold(fmt.Sprintf("%.0fms", sum.AvgLatencyMs)),
	)
	b.WriteString(RenderBox("Completion traces", stats))
	b.WriteString("\n\n")

	if len(calls) == 0 {
		b.WriteString(Dim("No completion attempts recorded yet.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, []string{
			TruncID(c.RequestID),
			fmt.Sprint(c.Attempt),
			c.Backend + Dim("/"+c.Model),
			fmt.Sprintf("%dms", c.LatencyMs),
			outcome(c),
			Dim(HumanTimestampFrom(c.CreatedAt, now)),
		})
	}
	b.WriteString(RenderTable([]string{"REQUEST", "TRY", "BACKEND", "LATENCY", "RESULT", "WHEN"}, rows))
	return b.String()
}

func failureCount(n int) string {
	if n == 0 {
		return StyleGreen.Render("0")
	}
	return StyleRed.Render(fmt.Sprint(n))
}

func outcome(c db.CallTrace) string {
	if c.Success {
		return StyleGreen.Render("ok")
	}
	label := c.ErrorCode
	if label == "" {
		label = "failed"
	}
	if c.Error != "" {
		label += " " + Dim(Truncate(c.Error, 40))
	}
	return StyleRed.Render(label)
}
