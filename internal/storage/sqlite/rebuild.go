package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// RebuildStats reports what a rebuild loaded.
type RebuildStats struct {
	Documents int `json:"documents"`
	Edges     int `json:"edges"`
	Asserted  int `json:"asserted"`
	Lookups   int `json:"lookups"`
}

// RebuildFromJSONL clears the database and reloads it from the documents file,
// replays the assertion log on top and regenerates the lookup tables.
// assertedPath may be empty.
func (s *Store) RebuildFromJSONL(ctx context.Context, docsPath, assertedPath string) (RebuildStats, error) {
	var stats RebuildStats

	docs, err := storage.ReadAll(docsPath)
	if err != nil {
		return stats, fmt.Errorf("reading JSONL: %w", err)
	}
	var asserted []storage.AssertedEdge
	if assertedPath != "" {
		asserted, err = storage.ReadAllAsserted(assertedPath)
		if err != nil {
			return stats, fmt.Errorf("reading assertion log: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, HandleSQLError(err)
	}
	defer tx.Rollback()

	for _, table := range []string{"edges", "docs", "docs_fts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return stats, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO docs (id, type, display_name, year, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing docs insert: %w", err)
	}
	defer docStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (doc_id, seq, p, o, q, q2) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer edgeStmt.Close()

	ftsStmt, err := tx.PrepareContext(ctx, `INSERT INTO docs_fts (id, display_name) VALUES (?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	nextSeq := make(map[string]int, len(docs))
	for i := range docs {
		d := &docs[i]
		if _, dup := nextSeq[d.ID]; dup {
			return stats, fmt.Errorf("duplicate document id %s", d.ID)
		}
		payload, err := encodePayload(d)
		if err != nil {
			return stats, err
		}
		if _, err := docStmt.ExecContext(ctx, d.ID, string(d.Type), d.DisplayName, nullableYear(d), payload); err != nil {
			return stats, fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
		if _, err := ftsStmt.ExecContext(ctx, d.ID, d.DisplayName); err != nil {
			return stats, fmt.Errorf("inserting fts for %s: %w", d.ID, err)
		}
		for seq, e := range d.Outgoing {
			if _, err := edgeStmt.ExecContext(ctx, d.ID, seq, e.P, e.O, e.Q, nullableStringValue(e.Q2)); err != nil {
				return stats, fmt.Errorf("inserting edge %d of %s: %w", seq, d.ID, err)
			}
		}
		nextSeq[d.ID] = len(d.Outgoing)
		stats.Edges += len(d.Outgoing)
	}
	stats.Documents = len(docs)

	for _, a := range asserted {
		seq, ok := nextSeq[a.Subject]
		if !ok {
			s.logger.WarnWithContext(ctx, "skipping assertion on unknown document", zap.String("subject", a.Subject))
			continue
		}
		e := a.Edge
		if _, err := edgeStmt.ExecContext(ctx, a.Subject, seq, e.P, e.O, e.Q, nullableStringValue(e.Q2)); err != nil {
			return stats, fmt.Errorf("replaying assertion on %s: %w", a.Subject, err)
		}
		nextSeq[a.Subject] = seq + 1
		stats.Asserted++
	}

	if err := tx.Commit(); err != nil {
		return stats, HandleSQLError(err)
	}

	stats.Lookups, err = s.RebuildLookups(ctx)
	if err != nil {
		return stats, err
	}

	s.logger.InfoWithContext(ctx, "rebuilt document store",
		zap.Int("documents", stats.Documents),
		zap.Int("edges", stats.Edges),
		zap.Int("asserted", stats.Asserted),
		zap.Int("lookups", stats.Lookups),
	)
	return stats, nil
}

// lookupSQL fills one lookup table with every object of p-edges from
// subjectType documents to objectType documents, counting distinct subjects.
const lookupSQL = `
	INSERT INTO lookups (tbl, id, display_name, n)
	SELECT ?, o.id, o.display_name, COUNT(DISTINCT e.doc_id)
	FROM edges e
	JOIN docs s ON s.id = e.doc_id AND s.type = ?
	JOIN docs o ON o.id = e.o AND o.type = ?
	WHERE e.p = ?
	GROUP BY o.id, o.display_name`

// RebuildLookups regenerates the precomputed lookup tables from the document
// tables and returns the number of rows written.
func (s *Store) RebuildLookups(ctx context.Context) (int, error) {
	tables := []struct {
		name                    storage.LookupTable
		subjectType, objectType document.Type
		predicate               string
	}{
		{storage.LookupAuthorConcepts, document.TypeAuthor, document.TypeConcept, document.PredRelation},
		{storage.LookupWorkInstitutions, document.TypeWork, document.TypeInstitution, document.PredAffil},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, HandleSQLError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lookups"); err != nil {
		return 0, fmt.Errorf("clearing lookups table: %w", err)
	}

	total := 0
	for _, t := range tables {
		res, err := tx.ExecContext(ctx, lookupSQL, string(t.name), string(t.subjectType), string(t.objectType), t.predicate)
		if err != nil {
			return 0, fmt.Errorf("building %s: %w", t.name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, HandleSQLError(err)
		}
		total += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, HandleSQLError(err)
	}
	return total, nil
}

// Lookup see [storage.Store].Lookup.
func (s *Store) Lookup(ctx context.Context, table storage.LookupTable) ([]storage.LookupEntry, error) {
	rows, err := s.stbl.
		Select("id", "display_name", "n").
		From("lookups").
		Where(sq.Eq{"tbl": string(table)}).
		OrderBy("display_name", "id").
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var entries []storage.LookupEntry
	for rows.Next() {
		var e storage.LookupEntry
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.Count); err != nil {
			return nil, HandleSQLError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return entries, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
