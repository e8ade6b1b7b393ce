package sqlite

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

// TextSearch see [storage.Store].TextSearch. Results are ranked by BM25 over
// display names; the returned score is the negated BM25 rank so that higher
// means more relevant.
func (s *Store) TextSearch(ctx context.Context, query string, typ document.Type, limit int) ([]storage.SearchHit, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	q := s.stbl.
		Select("d.id", "d.type", "d.display_name", "d.year", "d.payload", "bm25(docs_fts) AS rank").
		From("docs_fts").
		Join("docs d ON d.id = docs_fts.id").
		Where("docs_fts MATCH ?", ftsQuery).
		OrderBy("rank", "d.display_name")
	if typ != "" {
		q = q.Where(sq.Eq{"d.type": string(typ)})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var hits []storage.SearchHit
	for rows.Next() {
		var rank float64
		doc, err := scanDocument(rowWithRank{rows, &rank})
		if err != nil {
			return nil, HandleSQLError(err)
		}
		hits = append(hits, storage.SearchHit{Document: *doc, Score: -rank})
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}

	docs := make([]document.Document, len(hits))
	for i := range hits {
		docs[i] = hits[i].Document
	}
	if err := s.loadEdges(ctx, docs); err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].Document = docs[i]
	}
	return hits, nil
}

// rowWithRank appends the rank column to the destinations of a document scan.
type rowWithRank struct {
	s    scanner
	rank *float64
}

func (r rowWithRank) Scan(dest ...any) error {
	return r.s.Scan(append(dest, r.rank)...)
}

// prepareFTSQuery turns free text into an FTS5 query. Each whitespace
// separated term is quoted so that punctuation in names is matched literally,
// and the terms are combined with OR so partial matches still rank.
func prepareFTSQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, "\""+strings.ReplaceAll(t, "\"", "\"\"")+"\"")
	}
	return strings.Join(quoted, " OR ")
}
