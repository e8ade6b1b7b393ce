// Package sqlitetest builds throwaway SQLite stores for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage"
	"github.com/helioweb/helioweb/internal/storage/sqlite"
)

// NewStore writes docs to a JSONL file in a temporary directory, rebuilds a
// fresh database from it and returns the open store. The store is closed when
// the test ends.
func NewStore(t testing.TB, docs ...document.Document) *sqlite.Store {
	t.Helper()

	dir := t.TempDir()
	docsPath := filepath.Join(dir, "docs.jsonl")
	if err := storage.WriteAll(docsPath, docs); err != nil {
		t.Fatalf("writing fixture documents: %v", err)
	}

	s, err := sqlite.Open(filepath.Join(dir, "helio.db"), logger.NewNoopLogger())
	if err != nil {
		t.Fatalf("opening fixture store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.RebuildFromJSONL(context.Background(), docsPath, ""); err != nil {
		t.Fatalf("rebuilding fixture store: %v", err)
	}
	return s
}

// Author returns an Author document with the given concept relations.
func Author(id, name string, concepts ...document.Edge) document.Document {
	return document.Document{
		ID: id, Type: document.TypeAuthor, DisplayName: name,
		Author:   &document.Author{},
		Outgoing: concepts,
	}
}

// Work returns a Work document authored by authors and affiliated with institutions.
func Work(id, name string, year int, authors []string, institutions ...string) document.Document {
	d := document.Document{
		ID: id, Type: document.TypeWork, DisplayName: name,
		Work: &document.Work{Year: year},
	}
	for i, a := range authors {
		d.Outgoing = append(d.Outgoing, document.Edge{P: document.PredAuthor, O: a, Q: i + 1})
	}
	for i, inst := range institutions {
		d.Outgoing = append(d.Outgoing, document.Edge{P: document.PredAffil, O: inst, Q: i + 1})
	}
	return d
}

// Concept returns a Concept document whose broader edges point at ancestors.
func Concept(id, name string, ancestors ...string) document.Document {
	return document.Document{
		ID: id, Type: document.TypeConcept, DisplayName: name,
		Outgoing: broader(ancestors),
	}
}

// Institution returns an Institution document whose broader edges point at ancestors.
func Institution(id, name string, ancestors ...string) document.Document {
	return document.Document{
		ID: id, Type: document.TypeInstitution, DisplayName: name,
		Outgoing: broader(ancestors),
	}
}

// Relation returns a dcterms:relation edge to concept with quality q.
func Relation(concept string, q int) document.Edge {
	return document.Edge{P: document.PredRelation, O: concept, Q: q}
}

func broader(ancestors []string) []document.Edge {
	var edges []document.Edge
	for _, a := range ancestors {
		edges = append(edges, document.Edge{P: document.PredBroader, O: a})
	}
	return edges
}
