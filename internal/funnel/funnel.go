// Package funnel narrows the set of Authors by concept, institution and
// coauthor constraints simultaneously.
package funnel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage"
)

const (
	// MaxValues is the number of values accepted per filter list.
	MaxValues = 3

	// ResultLimit caps the number of Authors listed in a Result.
	ResultLimit = 50
)

// ErrTooManyValues is returned when a filter list holds more than MaxValues
// non-blank values.
var ErrTooManyValues = errors.New("too many filter values")

// Query holds the raw filter lists. Blank values are ignored.
type Query struct {
	Concepts     []string `json:"concepts,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
	Coauthors    []string `json:"coauthors,omitempty"`
}

// Result is the outcome of a funnel query. Count is the number of matching
// Authors and may exceed len(Authors).
type Result struct {
	Authors []document.Document `json:"authors"`
	Count   int                 `json:"count"`
}

// Options is the selection data offered for building a Query.
type Options struct {
	Concepts     []storage.LookupEntry `json:"concepts"`
	Institutions []storage.LookupEntry `json:"institutions"`
	Authors      []AuthorOption        `json:"authors"`
}

// AuthorOption is one selectable coauthor.
type AuthorOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Engine evaluates funnel queries.
type Engine struct {
	store  storage.Store
	logger logger.Logger
}

// New returns an Engine reading from store.
func New(store storage.Store, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Engine{store: store, logger: log}
}

// Authors returns the Authors satisfying every active constraint of q:
//
//   - concepts: a dcterms:relation edge into the union of the concept tents;
//   - institutions: authorship of a Work affiliated with the union of the
//     institution tents;
//   - coauthors: authorship of a Work listing every named coauthor.
//
// The institution and coauthor constraints apply to the same Work. With no
// active constraint, Authors is empty and Count is the number of all Authors.
func (e *Engine) Authors(ctx context.Context, q Query) (*Result, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}

	if q.empty() {
		n, err := e.store.Count(ctx, storage.Filter{Type: document.TypeAuthor})
		if err != nil {
			return nil, fmt.Errorf("counting authors: %w", err)
		}
		return &Result{Authors: []document.Document{}, Count: n}, nil
	}

	filter := authorFilter(q)

	res := &Result{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Count, err = e.store.Count(gctx, filter)
		return
	})
	g.Go(func() (err error) {
		res.Authors, err = e.store.Find(gctx, filter, storage.FindOptions{Sort: storage.SortDisplayName, Limit: ResultLimit})
		return
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("funnel query: %w", err)
	}
	if res.Authors == nil {
		res.Authors = []document.Document{}
	}

	e.logger.DebugWithContext(ctx, "funnel evaluated",
		zap.Strings("concepts", q.Concepts),
		zap.Strings("institutions", q.Institutions),
		zap.Strings("coauthors", q.Coauthors),
		zap.Int("count", res.Count),
	)
	return res, nil
}

// authorFilter builds the single Author filter for the active constraints.
// Tents are expanded by the store inside the query, so a hierarchy of any size
// binds only the selected roots.
func authorFilter(q Query) storage.Filter {
	filter := storage.Filter{Type: document.TypeAuthor}

	if len(q.Concepts) > 0 {
		filter.Edges = append(filter.Edges, storage.EdgeMatch{
			P:    document.PredRelation,
			Tent: &storage.Tent{Type: document.TypeConcept, Roots: q.Concepts},
		})
	}

	if len(q.Institutions) > 0 || len(q.Coauthors) > 0 {
		works := storage.Filter{
			Type:  document.TypeWork,
			Edges: []storage.EdgeMatch{{P: document.PredAuthor}},
		}
		if len(q.Institutions) > 0 {
			works.Edges = append(works.Edges, storage.EdgeMatch{
				P:    document.PredAffil,
				Tent: &storage.Tent{Type: document.TypeInstitution, Roots: q.Institutions},
			})
		}
		for _, c := range q.Coauthors {
			works.Edges = append(works.Edges, storage.EdgeMatch{P: document.PredAuthor, O: []string{c}})
		}
		filter.TargetOf = &storage.Projection{From: works, P: document.PredAuthor}
	}

	return filter
}

// Options returns the lookup tables and the list of all Authors.
func (e *Engine) Options(ctx context.Context) (*Options, error) {
	opts := &Options{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		opts.Concepts, err = e.store.Lookup(gctx, storage.LookupAuthorConcepts)
		return
	})
	g.Go(func() (err error) {
		opts.Institutions, err = e.store.Lookup(gctx, storage.LookupWorkInstitutions)
		return
	})
	g.Go(func() error {
		authors, err := e.store.Find(gctx, storage.Filter{Type: document.TypeAuthor}, storage.FindOptions{Sort: storage.SortDisplayName})
		if err != nil {
			return err
		}
		opts.Authors = make([]AuthorOption, 0, len(authors))
		for _, a := range authors {
			opts.Authors = append(opts.Authors, AuthorOption{ID: a.ID, DisplayName: a.DisplayName})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading funnel options: %w", err)
	}
	return opts, nil
}

// normalize drops blank values and enforces MaxValues per list.
func (q Query) normalize() (Query, error) {
	var err error
	var out Query
	if out.Concepts, err = clean("concepts", q.Concepts); err != nil {
		return out, err
	}
	if out.Institutions, err = clean("institutions", q.Institutions); err != nil {
		return out, err
	}
	if out.Coauthors, err = clean("coauthors", q.Coauthors); err != nil {
		return out, err
	}
	return out, nil
}

func (q Query) empty() bool {
	return len(q.Concepts) == 0 && len(q.Institutions) == 0 && len(q.Coauthors) == 0
}

func clean(name string, values []string) ([]string, error) {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) > MaxValues {
		return nil, fmt.Errorf("%w: %d %s (max %d)", ErrTooManyValues, len(out), name, MaxValues)
	}
	return out, nil
}
