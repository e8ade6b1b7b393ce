// Package storage defines the document store contract consumed by the query core.
//
// The contract is expressed in terms of logical capabilities (equality and set
// filters, edge-membership filters, one-hop projections, relevance-ranked text
// search and an atomic single-document edge append) rather than any one engine's
// query syntax. The sqlite subpackage provides the production implementation.
package storage

import (
	"context"
	"errors"

	"github.com/helioweb/helioweb/internal/document"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("not found")

// Store is the document store adapter.
type Store interface {
	// FindOne returns the document with the given id, or ErrNotFound.
	FindOne(ctx context.Context, id string) (*document.Document, error)

	// Find returns the documents matching f, ordered and truncated per opts.
	Find(ctx context.Context, f Filter, opts FindOptions) ([]document.Document, error)

	// FindIDs returns the ids of the documents matching f, in no particular order.
	FindIDs(ctx context.Context, f Filter) ([]string, error)

	// Count returns the number of documents matching f.
	Count(ctx context.Context, f Filter) (int, error)

	// EdgeObjects returns the distinct objects of the p-edges owned by the
	// documents matching p.From, in no particular order.
	EdgeObjects(ctx context.Context, p Projection) ([]string, error)

	// TextSearch returns documents matching query ordered by descending relevance.
	// An empty typ searches all types.
	TextSearch(ctx context.Context, query string, typ document.Type, limit int) ([]SearchHit, error)

	// AppendEdge atomically appends e to the outgoing list of document id.
	// It returns ErrNotFound if the document does not exist.
	AppendEdge(ctx context.Context, id string, e document.Edge) error

	// Lookup returns the rows of a precomputed lookup table.
	Lookup(ctx context.Context, table LookupTable) ([]LookupEntry, error)
}

// Filter selects documents. All set fields must hold (AND).
type Filter struct {
	IDs        []string      // id in IDs; a non-nil empty slice matches nothing
	ExcludeIDs []string      // id not in ExcludeIDs
	Type       document.Type // "" = any type
	Edges      []EdgeMatch   // document has, for each match, at least one such edge
	TargetOf   *Projection   // id is among the edge objects of another selection
}

// EdgeMatch matches a document that owns at least one edge with predicate P
// whose object is in O and, when Tent is set, inside Tent. An empty P matches
// any predicate; a nil O matches any object, while a non-nil empty O matches
// nothing.
type EdgeMatch struct {
	P    string
	O    []string
	Tent *Tent
}

// Tent is the union of the descendant sets of Roots within Type: every root
// of that type plus every document of that type reaching a root through
// skos:broader edges. Roots that are missing or of another type contribute
// nothing. The store expands the tent itself, so its size is not bounded by
// the number of values a query may bind.
type Tent struct {
	Type  document.Type
	Roots []string
}

// Projection is a one-hop traversal: the objects of the P-edges owned by the
// documents matching From.
type Projection struct {
	From Filter
	P    string
}

// Sort orders Find results.
type Sort int

const (
	SortNone        Sort = iota
	SortDisplayName // display name ascending
	SortYearAsc     // year then display name, ascending
	SortYearDesc    // year then display name, descending
)

// FindOptions controls ordering and truncation of Find results.
type FindOptions struct {
	Sort  Sort
	Limit int // 0 = unlimited
}

// SearchHit is one text search result.
type SearchHit struct {
	Document document.Document `json:"document"`
	Score    float64           `json:"score"`
}

// LookupTable names a precomputed lookup table.
type LookupTable string

const (
	LookupAuthorConcepts   LookupTable = "all_author_concepts"
	LookupWorkInstitutions LookupTable = "all_work_institutions"
)

// LookupEntry is one row of a lookup table: a selectable document and the number
// of documents referencing it.
type LookupEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Count       int    `json:"count"`
}
