package roadmap

import (
	"fmt"
	"sort"
	"strconv"
)

// Layout constants for the flat graph.
const (
	PhaseSpacingX = 340
	TopicOffsetY  = 100
	TopicSpacingY = 20
)

const (
	untitledPhase = "Untitled Phase"
	untitledTopic = "Untitled Topic"
	uncategorized = "Uncategorized"
	notAvailable  = "N/A"
)

// ToGraph flattens a Document into a node/edge graph. Every phase gets a
// phaseTitle node "phase_<i>"; topics get integer ids that increase in
// document order across the whole roadmap. Sub-steps stay inside the
// topic node's data. Phases and their topics form a single chain.
//
// An empty title, estimated time or difficulty is treated as missing and
// replaced by its default, so an explicit "" does not survive ToDocument.
func ToGraph(doc Document) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	counter := 0
	prevPhaseLast := ""

	for i, phase := range doc.Roadmap {
		title := phase.Title
		if title == "" {
			title = untitledPhase
		}
		x := float64(i * PhaseSpacingX)

		phaseID := fmt.Sprintf("phase_%d", i)
		g.Nodes = append(g.Nodes, Node{
			ID:       phaseID,
			Type:     NodePhaseTitle,
			Data:     NodeData{Label: title},
			Position: Position{X: x, Y: 0},
		})
		if prevPhaseLast != "" {
			g.Edges = append(g.Edges, newEdge(prevPhaseLast, phaseID))
		}

		lastTopic := ""
		for _, topic := range phase.Topics {
			id := strconv.Itoa(counter)
			// Stacking uses the node count before this topic is appended.
			y := float64(TopicOffsetY + (len(g.Nodes)-(i+1))*TopicSpacingY)
			g.Nodes = append(g.Nodes, Node{
				ID:       id,
				Type:     NodeTopic,
				Data:     topicData(topic, title),
				Position: Position{X: x, Y: y},
			})

			if lastTopic == "" {
				g.Edges = append(g.Edges, newEdge(phaseID, id))
			} else {
				g.Edges = append(g.Edges, newEdge(lastTopic, id))
			}
			lastTopic = id
			counter++
		}
		prevPhaseLast = lastTopic
	}

	return g
}

func topicData(t Topic, phaseTitle string) NodeData {
	steps := make([]string, 0, len(t.SubSteps))
	for _, s := range t.SubSteps {
		steps = append(steps, s.Title)
	}
	return NodeData{
		Label:         orDefault(t.Name, untitledTopic),
		Phase:         phaseTitle,
		EstimatedTime: orDefault(t.EstimatedTime, notAvailable),
		Difficulty:    orDefault(string(t.Difficulty), notAvailable),
		SubSteps:      steps,
	}
}

func newEdge(source, target string) Edge {
	return Edge{ID: "e" + source + "-" + target, Source: source, Target: target}
}

// ToDocument rebuilds a Document from a graph produced by ToGraph (possibly
// edited by the client). Topic nodes are ordered by their x position and
// grouped by the phase title stored on each node, in first-seen order.
//
// Two phases sharing a title are merged, and an x order that no longer
// matches authoring order reorders phases. Both are accepted.
func ToDocument(g Graph) Document {
	var topics []Node
	for _, n := range g.Nodes {
		if n.Type == NodeTopic {
			topics = append(topics, n)
		}
	}
	sort.SliceStable(topics, func(a, b int) bool {
		return topics[a].Position.X < topics[b].Position.X
	})

	var order []string
	grouped := make(map[string][]Topic)
	for _, n := range topics {
		phase := n.Data.Phase
		if phase == "" {
			phase = uncategorized
		}
		if _, seen := grouped[phase]; !seen {
			order = append(order, phase)
			grouped[phase] = []Topic{}
		}

		steps := make([]SubStep, 0, len(n.Data.SubSteps))
		for _, s := range n.Data.SubSteps {
			steps = append(steps, SubStep{Title: s})
		}
		grouped[phase] = append(grouped[phase], Topic{
			Name:          n.Data.Label,
			EstimatedTime: n.Data.EstimatedTime,
			Difficulty:    Difficulty(n.Data.Difficulty),
			SubSteps:      steps,
		})
	}

	doc := Document{Roadmap: make([]Phase, 0, len(order))}
	for _, name := range order {
		doc.Roadmap = append(doc.Roadmap, Phase{Title: name, Topics: grouped[name]})
	}
	return doc
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
