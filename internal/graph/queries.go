// Package graph holds the fixed library of one-hop and two-hop relationship
// queries over the document graph.
//
// Queries never report a missing root as an error: a root that does not
// exist simply has no relations. Existence is the caller's concern.
package graph

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// SearchLimit caps the number of text search hits.
const SearchLimit = 50

// Queries evaluates relationship queries against a store.
type Queries struct {
	store       storage.Store
	searchLimit int
}

// New returns Queries reading from store.
func New(store storage.Store) *Queries {
	return &Queries{store: store, searchLimit: SearchLimit}
}

// WithSearchLimit returns a copy of q whose Search returns at most n hits.
// Non-positive n keeps SearchLimit.
func (q *Queries) WithSearchLimit(n int) *Queries {
	c := *q
	if n > 0 {
		c.searchLimit = n
	}
	return &c
}

// Weighted is a related document together with the quality of the edge that
// relates it.
type Weighted struct {
	document.Document
	Q int `json:"q"`
}

// Hit is one search result with its page reference.
type Hit struct {
	ID          string        `json:"id"`
	Type        document.Type `json:"type"`
	DisplayName string        `json:"display_name"`
	Href        string        `json:"href"`
	Score       float64       `json:"score"`
}

// worksWith selects Works owning a p-edge to id.
func worksWith(p, id string) storage.Filter {
	return storage.Filter{
		Type:  document.TypeWork,
		Edges: []storage.EdgeMatch{{P: p, O: []string{id}}},
	}
}

var byName = storage.FindOptions{Sort: storage.SortDisplayName}

// Coauthors returns every Author other than a sharing at least one Work with
// a, sorted by display name.
func (q *Queries) Coauthors(ctx context.Context, a string) ([]document.Document, error) {
	return q.store.Find(ctx, storage.Filter{
		Type:       document.TypeAuthor,
		ExcludeIDs: []string{a},
		TargetOf:   &storage.Projection{From: worksWith(document.PredAuthor, a), P: document.PredAuthor},
	}, byName)
}

// CollaboratingInstitutions returns the Institutions affiliated with any Work
// of author a, sorted by display name.
func (q *Queries) CollaboratingInstitutions(ctx context.Context, a string) ([]document.Document, error) {
	return q.store.Find(ctx, storage.Filter{
		Type:     document.TypeInstitution,
		TargetOf: &storage.Projection{From: worksWith(document.PredAuthor, a), P: document.PredAffil},
	}, byName)
}

// CollaboratingAuthors returns the Authors of any Work affiliated with
// institution i, sorted by display name.
func (q *Queries) CollaboratingAuthors(ctx context.Context, i string) ([]document.Document, error) {
	return q.store.Find(ctx, storage.Filter{
		Type:     document.TypeAuthor,
		TargetOf: &storage.Projection{From: worksWith(document.PredAffil, i), P: document.PredAuthor},
	}, byName)
}

// WorksByAuthor returns the Works of author a, newest first.
func (q *Queries) WorksByAuthor(ctx context.Context, a string) ([]document.Document, error) {
	return q.store.Find(ctx, worksWith(document.PredAuthor, a), storage.FindOptions{Sort: storage.SortYearDesc})
}

// WorksByInstitution returns the Works affiliated with institution i, oldest first.
func (q *Queries) WorksByInstitution(ctx context.Context, i string) ([]document.Document, error) {
	return q.store.Find(ctx, worksWith(document.PredAffil, i), storage.FindOptions{Sort: storage.SortYearAsc})
}

// ConceptsOf returns the Concepts author a relates to, strongest relation
// first. Ties are broken by display name, descending.
func (q *Queries) ConceptsOf(ctx context.Context, a string) ([]Weighted, error) {
	related, err := q.weighted(ctx, a, document.PredRelation, document.TypeConcept)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(related, func(x, y Weighted) int {
		if c := cmp.Compare(y.Q, x.Q); c != 0 {
			return c
		}
		return cmp.Compare(y.DisplayName, x.DisplayName)
	})
	return related, nil
}

// AuthorsOfWork returns the Authors of work w with their author-edge quality,
// sorted by display name.
func (q *Queries) AuthorsOfWork(ctx context.Context, w string) ([]Weighted, error) {
	related, err := q.weighted(ctx, w, document.PredAuthor, document.TypeAuthor)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(related, func(x, y Weighted) int {
		return cmp.Compare(x.DisplayName, y.DisplayName)
	})
	return related, nil
}

// InstitutionsOfWork returns the Institutions work w is affiliated with,
// sorted by display name.
func (q *Queries) InstitutionsOfWork(ctx context.Context, w string) ([]document.Document, error) {
	return q.store.Find(ctx, storage.Filter{
		Type:     document.TypeInstitution,
		TargetOf: &storage.Projection{From: storage.Filter{IDs: []string{w}}, P: document.PredAffil},
	}, byName)
}

// ConceptAuthors returns the Authors relating to concept c, sorted by display name.
func (q *Queries) ConceptAuthors(ctx context.Context, c string) ([]document.Document, error) {
	return q.store.Find(ctx, storage.Filter{
		Type:  document.TypeAuthor,
		Edges: []storage.EdgeMatch{{P: document.PredRelation, O: []string{c}}},
	}, byName)
}

// Parents returns the documents of x's own type that x's skos:broader edges
// point to, sorted by display name.
func (q *Queries) Parents(ctx context.Context, x string) ([]document.Document, error) {
	root, err := q.root(ctx, x)
	if err != nil || root == nil {
		return nil, err
	}
	return q.store.Find(ctx, storage.Filter{
		Type: root.Type,
		TargetOf: &storage.Projection{
			From: storage.Filter{IDs: []string{x}},
			P:    document.PredBroader,
		},
	}, byName)
}

// Children returns the documents of x's own type whose skos:broader edges
// point at x, sorted by display name.
func (q *Queries) Children(ctx context.Context, x string) ([]document.Document, error) {
	root, err := q.root(ctx, x)
	if err != nil || root == nil {
		return nil, err
	}
	return q.store.Find(ctx, storage.Filter{
		Type:  root.Type,
		Edges: []storage.EdgeMatch{{P: document.PredBroader, O: []string{x}}},
	}, byName)
}

// Search runs a relevance-ranked text search over display names. An empty typ
// searches every type.
func (q *Queries) Search(ctx context.Context, query string, typ document.Type) ([]Hit, error) {
	found, err := q.store.TextSearch(ctx, query, typ, q.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	hits := make([]Hit, 0, len(found))
	for _, h := range found {
		hits = append(hits, Hit{
			ID:          h.Document.ID,
			Type:        h.Document.Type,
			DisplayName: h.Document.DisplayName,
			Href:        h.Document.Href(),
			Score:       h.Score,
		})
	}
	return hits, nil
}

// weighted returns the documents of type t that id's p-edges point to, each
// carrying the quality of the first edge reaching it.
func (q *Queries) weighted(ctx context.Context, id, p string, t document.Type) ([]Weighted, error) {
	root, err := q.root(ctx, id)
	if err != nil || root == nil {
		return nil, err
	}

	ids := root.Objects(p)
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := q.store.Find(ctx, storage.Filter{IDs: ids, Type: t}, storage.FindOptions{})
	if err != nil {
		return nil, err
	}

	related := make([]Weighted, 0, len(docs))
	for _, d := range docs {
		e, _ := root.EdgeTo(d.ID)
		related = append(related, Weighted{Document: d, Q: e.Q})
	}
	return related, nil
}

// root fetches x, returning nil without error when it does not exist.
func (q *Queries) root(ctx context.Context, x string) (*document.Document, error) {
	doc, err := q.store.FindOne(ctx, x)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}
