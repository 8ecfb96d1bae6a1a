package roadmap

import (
	"fmt"
	"strings"
)

// MessageDetailsUpdated is returned by DiffSummary when the topic sets match.
const MessageDetailsUpdated = "OK, I've updated the details in the roadmap as you requested."

// DiffSummary compares the sets of topic labels of two graphs and returns a
// short chat message. Ordering is ignored.
func DiffSummary(oldGraph, newGraph Graph) string {
	before := labelSet(oldGraph)
	after := labelSet(newGraph)

	added := countMissing(after, before)
	removed := countMissing(before, after)
	if added == 0 && removed == 0 {
		return MessageDetailsUpdated
	}

	var changes []string
	if added > 0 {
		changes = append(changes, "added "+pluralTopics(added))
	}
	if removed > 0 {
		changes = append(changes, "removed "+pluralTopics(removed))
	}
	return "OK, I've " + strings.Join(changes, " and ") + "."
}

func labelSet(g Graph) map[string]struct{} {
	set := make(map[string]struct{})
	for _, label := range g.TopicLabels() {
		set[label] = struct{}{}
	}
	return set
}

// countMissing counts members of a that are not in b.
func countMissing(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; !ok {
			n++
		}
	}
	return n
}

func pluralTopics(n int) string {
	if n == 1 {
		return "1 topic"
	}
	return fmt.Sprintf("%d topics", n)
}
