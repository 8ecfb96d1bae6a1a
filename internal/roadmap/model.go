package roadmap

import (
	"bytes"
	"encoding/json"
)

// Difficulty is the free-text difficulty level attached to a topic.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Document is the nested roadmap shape exchanged with the language model.
type Document struct {
	Roadmap []Phase `json:"roadmap"`
}

// Phase is a top-level stage of a roadmap.
type Phase struct {
	Title  string  `json:"phase"`
	Topics []Topic `json:"topics"`
}

// Topic is a unit of study within a phase.
type Topic struct {
	Name          string     `json:"topic"`
	EstimatedTime string     `json:"estimated_time"`
	Difficulty    Difficulty `json:"difficulty"`
	SubSteps      []SubStep  `json:"sub_steps"`
}

// SubStep is a granular actionable item. Only the title is carried.
type SubStep struct {
	Title string `json:"title"`
}

// UnmarshalJSON accepts both {"title": "..."} and a bare string.
func (s *SubStep) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Title)
	}
	var obj struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Title = obj.Title
	return nil
}

// NodeType identifies how the front end renders a node.
type NodeType string

const (
	NodePhaseTitle NodeType = "phaseTitle"
	NodeTopic      NodeType = "topic"
	NodeStep       NodeType = "step"
)

// Graph is the flat node/edge shape consumed by the visualizer.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a single vertex of a roadmap graph.
// Parent is only set by the nested converter.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
	Parent   string   `json:"parent,omitempty"`
}

// NodeData holds the render payload of a node. Phase is a denormalized
// copy of the owning phase title, used to rebuild a Document.
type NodeData struct {
	Label         string   `json:"label"`
	Phase         string   `json:"phase,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	SubSteps      []string `json:"subSteps,omitempty"`
}

// Position is the layout coordinate of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TopicLabels returns the labels of all topic nodes in graph order.
func (g Graph) TopicLabels() []string {
	var out []string
	for _, n := range g.Nodes {
		if n.Type == NodeTopic {
			out = append(out, n.Data.Label)
		}
	}
	return out
}
