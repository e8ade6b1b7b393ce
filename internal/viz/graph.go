package viz

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// Build returns the neighbourhood of document id: the document, every existing
// document its edges point to, and every document with an edge pointing at it.
// Edges whose object does not exist are left out.
func Build(ctx context.Context, store storage.Store, id string) (*GraphData, error) {
	root, err := store.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}

	targets, err := store.Find(ctx, storage.Filter{IDs: objectIDs(root)}, storage.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading edge objects of %s: %w", id, err)
	}
	sources, err := store.Find(ctx, storage.Filter{
		ExcludeIDs: []string{id},
		Edges:      []storage.EdgeMatch{{O: []string{id}}},
	}, storage.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading documents pointing at %s: %w", id, err)
	}

	nodes := map[string]*Node{root.ID: newNode(root)}
	for i := range targets {
		nodes[targets[i].ID] = newNode(&targets[i])
	}
	for i := range sources {
		nodes[sources[i].ID] = newNode(&sources[i])
	}

	var edges []Edge
	add := func(src string, e document.Edge) {
		if _, ok := nodes[e.O]; !ok {
			return
		}
		nodes[src].ConnectionCount++
		nodes[e.O].ConnectionCount++
		edges = append(edges, Edge{Source: src, Target: e.O, Predicate: e.P, Quality: e.Q, Asserted: e.Q2 != ""})
	}
	for _, e := range root.Outgoing {
		add(root.ID, e)
	}
	for _, s := range sources {
		for _, e := range s.Outgoing {
			if e.O == id {
				add(s.ID, e)
			}
		}
	}

	g := &GraphData{Root: root.ID, Nodes: make([]Node, 0, len(nodes)), Edges: edges}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, *n)
	}
	slices.SortFunc(g.Nodes, func(a, b Node) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.ID, b.ID))
	})
	return g, nil
}

// objectIDs returns the distinct edge objects of d, never nil.
func objectIDs(d *document.Document) []string {
	ids := []string{}
	seen := make(map[string]bool, len(d.Outgoing))
	for _, e := range d.Outgoing {
		if !seen[e.O] {
			seen[e.O] = true
			ids = append(ids, e.O)
		}
	}
	return ids
}

func newNode(d *document.Document) *Node {
	return &Node{
		ID:    d.ID,
		Type:  d.Type,
		Label: d.DisplayName,
		Href:  d.Href(),
		Year:  d.Year(),
	}
}
