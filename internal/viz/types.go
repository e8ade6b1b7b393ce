// Package viz extracts the neighbourhood of a document as graph data for
// external visualization tools.
package viz

import "github.com/helioweb/helioweb/internal/document"

// GraphData contains all nodes and edges of one neighbourhood.
type GraphData struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one document of the neighbourhood.
type Node struct {
	ID    string        `json:"id"`
	Type  document.Type `json:"type"`
	Label string        `json:"label"`
	Href  string        `json:"href"`
	Year  int           `json:"year,omitempty"`

	// ConnectionCount is the number of neighbourhood edges touching the node.
	ConnectionCount int `json:"connectionCount"`
}

// Edge is one document edge between two neighbourhood nodes.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Predicate string `json:"predicate"`
	Quality   int    `json:"quality"`
	Asserted  bool   `json:"asserted,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
