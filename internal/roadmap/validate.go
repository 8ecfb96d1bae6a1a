package roadmap

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNode indicates two nodes share an id.
	ErrDuplicateNode = errors.New("roadmap: duplicate node id")

	// ErrDanglingEdge indicates an edge references a node that does not exist.
	ErrDanglingEdge = errors.New("roadmap: edge references unknown node")
)

// ValidateGraph checks that node ids are unique and that every edge
// endpoint references an existing node. All problems are returned.
func ValidateGraph(g Graph) []error {
	var errs []error

	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID))
			continue
		}
		ids[n.ID] = true
	}

	for _, e := range g.Edges {
		if !ids[e.Source] {
			errs = append(errs, fmt.Errorf("%w: edge %q source %q", ErrDanglingEdge, e.ID, e.Source))
		}
		if !ids[e.Target] {
			errs = append(errs, fmt.Errorf("%w: edge %q target %q", ErrDanglingEdge, e.ID, e.Target))
		}
	}

	return errs
}
