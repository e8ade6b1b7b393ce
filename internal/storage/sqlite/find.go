package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
)

const docColumns = "id, type, display_name, year, payload"

// edgeBatchSize bounds the number of ids bound into a single edge load.
const edgeBatchSize = 500

// FindOne see [storage.Store].FindOne.
func (s *Store) FindOne(ctx context.Context, id string) (*document.Document, error) {
	row := s.stbl.
		Select(docColumns).
		From("docs").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, HandleSQLError(err)
	}

	docs := []document.Document{*doc}
	if err := s.loadEdges(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// Find see [storage.Store].Find.
func (s *Store) Find(ctx context.Context, f storage.Filter, opts storage.FindOptions) ([]document.Document, error) {
	where, err := filterCond(f)
	if err != nil {
		return nil, err
	}

	q := s.stbl.Select(docColumns).From("docs").Where(where)
	switch opts.Sort {
	case storage.SortDisplayName:
		q = q.OrderBy("display_name", "id")
	case storage.SortYearAsc:
		q = q.OrderBy("year", "display_name", "id")
	case storage.SortYearDesc:
		q = q.OrderBy("year DESC", "display_name DESC", "id DESC")
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, HandleSQLError(err)
	}

	if err := s.loadEdges(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindIDs see [storage.Store].FindIDs.
func (s *Store) FindIDs(ctx context.Context, f storage.Filter) ([]string, error) {
	where, err := filterCond(f)
	if err != nil {
		return nil, err
	}

	rows, err := s.stbl.Select("id").From("docs").Where(where).QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	return scanStrings(rows)
}

// Count see [storage.Store].Count.
func (s *Store) Count(ctx context.Context, f storage.Filter) (int, error) {
	where, err := filterCond(f)
	if err != nil {
		return 0, err
	}

	var n int
	err = s.stbl.Select("COUNT(*)").From("docs").Where(where).QueryRowContext(ctx).Scan(&n)
	if err != nil {
		return 0, HandleSQLError(err)
	}
	return n, nil
}

// EdgeObjects see [storage.Store].EdgeObjects.
func (s *Store) EdgeObjects(ctx context.Context, p storage.Projection) ([]string, error) {
	q, err := projectionQuery(p)
	if err != nil {
		return nil, err
	}

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	return scanStrings(rows)
}

// filterCond translates a storage.Filter into a WHERE condition on docs.
// Column references are left unqualified so that nested selections resolve
// against their own innermost table.
func filterCond(f storage.Filter) (sq.And, error) {
	cond := sq.And{}

	if f.IDs != nil {
		cond = append(cond, sq.Eq{"id": f.IDs})
	}
	if len(f.ExcludeIDs) > 0 {
		cond = append(cond, sq.NotEq{"id": f.ExcludeIDs})
	}
	if f.Type != "" {
		cond = append(cond, sq.Eq{"type": string(f.Type)})
	}

	for _, m := range f.Edges {
		match, err := edgeMatchCond(m)
		if err != nil {
			return nil, err
		}
		sub := sq.Select("doc_id").From("edges").Where(match)
		in, err := inSubquery("id", sub)
		if err != nil {
			return nil, err
		}
		cond = append(cond, in)
	}

	if f.TargetOf != nil {
		sub, err := projectionQuery(*f.TargetOf)
		if err != nil {
			return nil, err
		}
		in, err := inSubquery("id", sub)
		if err != nil {
			return nil, err
		}
		cond = append(cond, in)
	}

	return cond, nil
}

func edgeMatchCond(m storage.EdgeMatch) (sq.And, error) {
	cond := sq.And{}
	if m.P != "" {
		cond = append(cond, sq.Eq{"p": m.P})
	}
	if m.O != nil {
		cond = append(cond, sq.Eq{"o": m.O})
	}
	if m.Tent != nil {
		in, err := tentCond(*m.Tent)
		if err != nil {
			return nil, err
		}
		cond = append(cond, in)
	}
	return cond, nil
}

// tentCond matches edge objects inside t. The recursive query walks
// skos:broader edges backwards from the roots; UNION drops ids already
// reached, which also ends the walk on cycles. Only the roots are bound.
func tentCond(t storage.Tent) (sq.Sqlizer, error) {
	roots, args, err := sq.Eq{"d.id": t.Roots}.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tent roots: %w", err)
	}

	query := "o IN (WITH RECURSIVE tent(id) AS (" +
		"SELECT d.id FROM docs d WHERE " + roots + " AND d.type = ?" +
		" UNION" +
		" SELECT e.doc_id FROM edges e" +
		" JOIN tent ON e.o = tent.id" +
		" JOIN docs d ON d.id = e.doc_id" +
		" WHERE e.p = ? AND d.type = ?" +
		") SELECT id FROM tent)"
	args = append(args, string(t.Type), document.PredBroader, string(t.Type))
	return sq.Expr(query, args...), nil
}

// projectionQuery selects the distinct objects of the P-edges owned by the
// documents matching p.From.
func projectionQuery(p storage.Projection) (sq.SelectBuilder, error) {
	from, err := filterCond(p.From)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	owners, err := inSubquery("doc_id", sq.Select("id").From("docs").Where(from))
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	q := sq.Select("o").Distinct().From("edges").Where(owners)
	if p.P != "" {
		q = q.Where(sq.Eq{"p": p.P})
	}
	return q, nil
}

func inSubquery(column string, sub sq.SelectBuilder) (sq.Sqlizer, error) {
	query, args, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building subquery: %w", err)
	}
	return sq.Expr(column+" IN ("+query+")", args...), nil
}

// loadEdges fills the Outgoing list of every document, in append order.
func (s *Store) loadEdges(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}

	index := make(map[string]int, len(docs))
	ids := make([]string, 0, len(docs))
	for i, d := range docs {
		index[d.ID] = i
		ids = append(ids, d.ID)
	}

	for start := 0; start < len(ids); start += edgeBatchSize {
		end := min(start+edgeBatchSize, len(ids))

		rows, err := s.stbl.
			Select("doc_id", "p", "o", "q", "q2").
			From("edges").
			Where(sq.Eq{"doc_id": ids[start:end]}).
			OrderBy("doc_id", "seq").
			QueryContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		if err := scanEdgesInto(rows, docs, index); err != nil {
			return HandleSQLError(err)
		}
	}
	return nil
}

func scanEdgesInto(rows *sql.Rows, docs []document.Document, index map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var docID string
		var e document.Edge
		var q2 sql.NullString
		if err := rows.Scan(&docID, &e.P, &e.O, &e.Q, &q2); err != nil {
			return err
		}
		e.Q2 = q2.String
		i := index[docID]
		docs[i].Outgoing = append(docs[i].Outgoing, e)
	}
	return rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*document.Document, error) {
	var (
		doc     document.Document
		typ     string
		year    sql.NullInt64
		payload sql.NullString
	)
	if err := s.Scan(&doc.ID, &typ, &doc.DisplayName, &year, &payload); err != nil {
		return nil, err
	}
	doc.Type = document.Type(typ)

	if err := decodePayload(&doc, payload); err != nil {
		return nil, err
	}
	if doc.Work != nil && year.Valid {
		doc.Work.Year = int(year.Int64)
	}
	return &doc, nil
}

func scanDocuments(rows *sql.Rows) ([]document.Document, error) {
	defer rows.Close()
	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, HandleSQLError(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return out, nil
}

// encodePayload returns the JSON of the document's typed payload, or NULL.
func encodePayload(doc *document.Document) (sql.NullString, error) {
	var v any
	switch {
	case doc.Author != nil:
		v = doc.Author
	case doc.Work != nil:
		v = doc.Work
	case doc.Institution != nil:
		v = doc.Institution
	case doc.Concept != nil:
		v = doc.Concept
	default:
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding payload of %s: %w", doc.ID, err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodePayload(doc *document.Document, payload sql.NullString) error {
	if !payload.Valid {
		return nil
	}

	var target any
	switch doc.Type {
	case document.TypeAuthor:
		doc.Author = &document.Author{}
		target = doc.Author
	case document.TypeWork:
		doc.Work = &document.Work{}
		target = doc.Work
	case document.TypeInstitution:
		doc.Institution = &document.Institution{}
		target = doc.Institution
	case document.TypeConcept:
		doc.Concept = &document.Concept{}
		target = doc.Concept
	default:
		return nil
	}
	if err := json.Unmarshal([]byte(payload.String), target); err != nil {
		return fmt.Errorf("decoding payload of %s: %w", doc.ID, err)
	}
	return nil
}

func nullableYear(doc *document.Document) sql.NullInt64 {
	if doc.Work == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(doc.Work.Year), Valid: true}
}
