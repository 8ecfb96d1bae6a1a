package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NestedItem is the recursive name/sub_steps roadmap variant some model
// responses use instead of the phase/topic schema.
type NestedItem struct {
	Name     string       `json:"name"`
	SubSteps []NestedItem `json:"sub_steps,omitempty"`
}

// Shape identifies which roadmap schema a model response uses.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeNested
)

func (s Shape) String() string {
	if s == ShapeNested {
		return "nested"
	}
	return "flat"
}

// Child layout offsets for the nested converter.
const (
	childOffsetX = 150
	childStepX   = 100
	childOffsetY = 80
	childStepY   = 40
)

// DetectShape reports ShapeNested when the first roadmap item carries a
// "name" key, and ShapeFlat otherwise (including for an empty roadmap).
func DetectShape(items []json.RawMessage) Shape {
	if len(items) == 0 {
		return ShapeFlat
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &probe); err != nil {
		return ShapeFlat
	}
	if _, ok := probe["name"]; ok {
		return ShapeNested
	}
	return ShapeFlat
}

// DecodePhases decodes raw roadmap items as flat phases.
func DecodePhases(items []json.RawMessage) ([]Phase, error) {
	phases := make([]Phase, 0, len(items))
	for i, raw := range items {
		var p Phase
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding phase %d: %w", i, err)
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// DecodeNested decodes raw roadmap items as nested name/sub_steps items.
func DecodeNested(items []json.RawMessage) ([]NestedItem, error) {
	out := make([]NestedItem, 0, len(items))
	for i, raw := range items {
		var it NestedItem
		if err := json.Unmarshal(bytes.TrimSpace(raw), &it); err != nil {
			return nil, fmt.Errorf("decoding nested item %d: %w", i, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// DecodeGraph converts raw roadmap items to a graph, choosing the decoder
// by DetectShape.
func DecodeGraph(items []json.RawMessage) (Graph, Shape, error) {
	shape := DetectShape(items)
	if shape == ShapeNested {
		nested, err := DecodeNested(items)
		if err != nil {
			return Graph{}, shape, err
		}
		return NestedToGraph(nested), shape, nil
	}
	phases, err := DecodePhases(items)
	if err != nil {
		return Graph{}, shape, err
	}
	return ToGraph(Document{Roadmap: phases}), shape, nil
}

// NestedToGraph converts nested items to a graph. Top-level items become
// phaseTitle nodes, every descendant becomes a step node linked to its
// immediate parent. Ids are "<type>_<n>" with one counter for the whole call.
func NestedToGraph(items []NestedItem) Graph {
	b := &nestedBuilder{g: Graph{Nodes: []Node{}, Edges: []Edge{}}}
	for i, it := range items {
		b.visit(it, "", float64(i*PhaseSpacingX), 0)
	}
	return b.g
}

type nestedBuilder struct {
	g       Graph
	counter int
}

func (b *nestedBuilder) visit(it NestedItem, parent string, x, y float64) {
	typ := NodeStep
	if parent == "" {
		typ = NodePhaseTitle
	}
	id := fmt.Sprintf("%s_%d", typ, b.counter)
	b.counter++

	b.g.Nodes = append(b.g.Nodes, Node{
		ID:       id,
		Type:     typ,
		Data:     NodeData{Label: it.Name},
		Position: Position{X: x, Y: y},
		Parent:   parent,
	})
	if parent != "" {
		b.g.Edges = append(b.g.Edges, Edge{
			ID:     fmt.Sprintf("e_%s_%s", parent, id),
			Source: parent,
			Target: id,
		})
	}

	for ci, child := range it.SubSteps {
		b.visit(child, id,
			x+float64(childOffsetX+ci*childStepX),
			y+float64(childOffsetY+ci*childStepY))
	}
}
