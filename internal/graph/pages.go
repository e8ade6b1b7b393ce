package graph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// AuthorPage is everything shown for one Author.
type AuthorPage struct {
	Author                    document.Document   `json:"author"`
	OpenAlexLink              string              `json:"openalex_link,omitempty"`
	Concepts                  []Weighted          `json:"concepts"`
	Works                     []document.Document `json:"works"`
	Coauthors                 []document.Document `json:"coauthors"`
	CollaboratingInstitutions []document.Document `json:"collaborating_institutions"`
}

// WorkPage is everything shown for one Work.
type WorkPage struct {
	Work         document.Document   `json:"work"`
	OpenAlexLink string              `json:"openalex_link,omitempty"`
	Authors      []Weighted          `json:"authors"`
	Institutions []document.Document `json:"institutions"`
}

// InstitutionPage is everything shown for one Institution.
type InstitutionPage struct {
	Institution          document.Document   `json:"institution"`
	ADSID                string              `json:"ads_id"`
	Parents              []document.Document `json:"parents"`
	Children             []document.Document `json:"children"`
	Works                []document.Document `json:"works"`
	CollaboratingAuthors []document.Document `json:"collaborating_authors"`
}

// ConceptPage is everything shown for one Concept.
type ConceptPage struct {
	Concept      document.Document   `json:"concept"`
	OpenAlexLink string              `json:"openalex_link,omitempty"`
	Parents      []document.Document `json:"parents"`
	Children     []document.Document `json:"children"`
	Authors      []document.Document `json:"authors"`
}

// AuthorPage gathers the page of author id. Unlike the individual queries it
// reports storage.ErrNotFound when id is not an existing Author.
func (q *Queries) AuthorPage(ctx context.Context, id string) (*AuthorPage, error) {
	root, err := q.page(ctx, id, document.TypeAuthor)
	if err != nil {
		return nil, err
	}
	p := &AuthorPage{Author: *root, OpenAlexLink: root.OpenAlexLink()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.Concepts, err = q.ConceptsOf(ctx, id); return })
	g.Go(func() (err error) { p.Works, err = q.WorksByAuthor(ctx, id); return })
	g.Go(func() (err error) { p.Coauthors, err = q.Coauthors(ctx, id); return })
	g.Go(func() (err error) { p.CollaboratingInstitutions, err = q.CollaboratingInstitutions(ctx, id); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("author %s: %w", id, err)
	}
	return p, nil
}

// WorkPage gathers the page of work id.
func (q *Queries) WorkPage(ctx context.Context, id string) (*WorkPage, error) {
	root, err := q.page(ctx, id, document.TypeWork)
	if err != nil {
		return nil, err
	}
	p := &WorkPage{Work: *root, OpenAlexLink: root.OpenAlexLink()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.Authors, err = q.AuthorsOfWork(ctx, id); return })
	g.Go(func() (err error) { p.Institutions, err = q.InstitutionsOfWork(ctx, id); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("work %s: %w", id, err)
	}
	return p, nil
}

// InstitutionPage gathers the page of institution id.
func (q *Queries) InstitutionPage(ctx context.Context, id string) (*InstitutionPage, error) {
	root, err := q.page(ctx, id, document.TypeInstitution)
	if err != nil {
		return nil, err
	}
	p := &InstitutionPage{Institution: *root, ADSID: root.ADSID()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.Parents, err = q.Parents(ctx, id); return })
	g.Go(func() (err error) { p.Children, err = q.Children(ctx, id); return })
	g.Go(func() (err error) { p.Works, err = q.WorksByInstitution(ctx, id); return })
	g.Go(func() (err error) { p.CollaboratingAuthors, err = q.CollaboratingAuthors(ctx, id); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("institution %s: %w", id, err)
	}
	return p, nil
}

// ConceptPage gathers the page of concept id.
func (q *Queries) ConceptPage(ctx context.Context, id string) (*ConceptPage, error) {
	root, err := q.page(ctx, id, document.TypeConcept)
	if err != nil {
		return nil, err
	}
	p := &ConceptPage{Concept: *root, OpenAlexLink: root.OpenAlexLink()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.Parents, err = q.Parents(ctx, id); return })
	g.Go(func() (err error) { p.Children, err = q.Children(ctx, id); return })
	g.Go(func() (err error) { p.Authors, err = q.ConceptAuthors(ctx, id); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("concept %s: %w", id, err)
	}
	return p, nil
}

func (q *Queries) page(ctx context.Context, id string, t document.Type) (*document.Document, error) {
	root, err := q.store.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t, id, err)
	}
	if root.Type != t {
		return nil, fmt.Errorf("%s %s: %w", t, id, storage.ErrNotFound)
	}
	return root, nil
}
