package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

// readGraphFile loads a saved roadmap graph. A file without nodes counts
// as a missing roadmap.
func readGraphFile(path string) (*roadmap.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roadmap: %w", err)
	}
	data = bytes.TrimSpace(data)

	// Accept both a bare graph and a saved {"roadmap": graph} response.
	var wrapped struct {
		Roadmap json.RawMessage `json:"roadmap"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Roadmap) > 0 && wrapped.Roadmap[0] == '{' {
		data = wrapped.Roadmap
	}

	var g roadmap.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing roadmap %s: %w", path, err)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, intelligence.ErrMissingRoadmap)
	}
	return &g, nil
}

func writeGraphFile(path string, g roadmap.Graph) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding roadmap: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing roadmap: %w", err)
	}
	return nil
}

// resultJSON mirrors the HTTP response body.
type resultJSON struct {
	Roadmap    roadmap.Graph `json:"roadmap"`
	Message    string        `json:"message"`
	IsComplete bool          `json:"is_complete"`
}

func writeResultJSON(w io.Writer, res *intelligence.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{Roadmap: res.Graph, Message: res.Message, IsComplete: res.IsComplete})
}
