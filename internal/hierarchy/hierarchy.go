// Package hierarchy computes descendant sets (tents) and ancestor sets
// (closures) over the skos:broader hierarchies of Concepts and Institutions.
//
// Ancestor edges are materialized: every node stores a broader edge to each of
// its ancestors, not only to its parent. Closure therefore needs a single join.
// No node stores its descendants, so Tent walks the whole hierarchy backwards.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// ErrNotHierarchical is returned for document types without a broader hierarchy.
var ErrNotHierarchical = errors.New("type has no broader hierarchy")

// frontierBatch bounds the number of ids bound into one frontier query.
const frontierBatch = 1000

// maxConcurrentTents bounds the per-seed fan-out of TentUnion.
const maxConcurrentTents = 4

// Engine evaluates hierarchy queries against a store.
type Engine struct {
	store storage.Store
}

// New returns an Engine reading from store.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// IsHierarchical reports whether documents of type t form a broader hierarchy.
func IsHierarchical(t document.Type) bool {
	return t == document.TypeConcept || t == document.TypeInstitution
}

// Tent returns id and every document of type t that reaches id by following
// skos:broader edges, sorted. A missing root, or a root of another type,
// yields an empty set.
func (e *Engine) Tent(ctx context.Context, t document.Type, id string) ([]string, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	ok, err := e.exists(ctx, t, id)
	if err != nil || !ok {
		return nil, err
	}

	visited := map[string]bool{id: true}
	if err := e.walk(ctx, visited, []string{id}, func(frontier []string) storage.Filter {
		return storage.Filter{
			Type:  t,
			Edges: []storage.EdgeMatch{{P: document.PredBroader, O: frontier}},
		}
	}); err != nil {
		return nil, fmt.Errorf("tent of %s: %w", id, err)
	}
	return sortedKeys(visited), nil
}

// TentUnion returns the deduplicated union of the tents of seeds, sorted.
// Blank seeds are ignored. Tents are computed concurrently.
func (e *Engine) TentUnion(ctx context.Context, t document.Type, seeds []string) ([]string, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		union = make(map[string]bool)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTents)
	for _, seed := range seeds {
		if seed == "" {
			continue
		}
		g.Go(func() error {
			tent, err := e.Tent(ctx, t, seed)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range tent {
				union[id] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sortedKeys(union), nil
}

// Closure returns id and the existing documents of type t that its own
// skos:broader edges point to, sorted. It relies on ancestor edges being
// materialized and so never looks past the root's own edges. A missing root
// yields an empty set.
func (e *Engine) Closure(ctx context.Context, t document.Type, id string) ([]string, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	ok, err := e.exists(ctx, t, id)
	if err != nil || !ok {
		return nil, err
	}

	ancestors, err := e.store.FindIDs(ctx, parentsFilter(t, []string{id}))
	if err != nil {
		return nil, fmt.Errorf("closure of %s: %w", id, err)
	}

	set := map[string]bool{id: true}
	for _, a := range ancestors {
		set[a] = true
	}
	return sortedKeys(set), nil
}

// ClosureTransitive is Closure for hierarchies whose ancestor edges are not
// materialized: it follows skos:broader edges forward until no new ancestor
// appears.
func (e *Engine) ClosureTransitive(ctx context.Context, t document.Type, id string) ([]string, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	ok, err := e.exists(ctx, t, id)
	if err != nil || !ok {
		return nil, err
	}

	visited := map[string]bool{id: true}
	if err := e.walk(ctx, visited, []string{id}, func(frontier []string) storage.Filter {
		return parentsFilter(t, frontier)
	}); err != nil {
		return nil, fmt.Errorf("closure of %s: %w", id, err)
	}
	return sortedKeys(visited), nil
}

// walk expands frontier level by level. next builds the filter selecting the
// neighbours of a batch of frontier ids. Already visited ids are never
// expanded twice, so the walk terminates on cyclic data.
func (e *Engine) walk(ctx context.Context, visited map[string]bool, frontier []string, next func([]string) storage.Filter) error {
	for len(frontier) > 0 {
		var discovered []string
		for start := 0; start < len(frontier); start += frontierBatch {
			end := min(start+frontierBatch, len(frontier))
			ids, err := e.store.FindIDs(ctx, next(frontier[start:end]))
			if err != nil {
				return err
			}
			for _, id := range ids {
				if !visited[id] {
					visited[id] = true
					discovered = append(discovered, id)
				}
			}
		}
		frontier = discovered
	}
	return nil
}

// parentsFilter selects the documents of type t that the skos:broader edges
// of ids point to.
func parentsFilter(t document.Type, ids []string) storage.Filter {
	return storage.Filter{
		Type: t,
		TargetOf: &storage.Projection{
			From: storage.Filter{IDs: ids, Type: t},
			P:    document.PredBroader,
		},
	}
}

func (e *Engine) exists(ctx context.Context, t document.Type, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := e.store.Count(ctx, storage.Filter{IDs: []string{id}, Type: t})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func checkType(t document.Type) error {
	if !IsHierarchical(t) {
		return fmt.Errorf("%w: %q", ErrNotHierarchical, t)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
