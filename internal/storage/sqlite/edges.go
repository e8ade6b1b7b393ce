package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/helioweb/helioweb/internal/document"
)

// appendEdgeSQL assigns the next sequence number of the owner in the same
// statement that inserts the edge, so concurrent appends never collide.
// The foreign key on doc_id rejects edges for unknown owners.
const appendEdgeSQL = `
	INSERT INTO edges (doc_id, seq, p, o, q, q2)
	SELECT ?, COALESCE(MAX(seq), -1) + 1, ?, ?, ?, ?
	FROM edges WHERE doc_id = ?`

// AppendEdge see [storage.Store].AppendEdge.
func (s *Store) AppendEdge(ctx context.Context, id string, e document.Edge) error {
	_, err := s.db.ExecContext(ctx, appendEdgeSQL, id, e.P, e.O, e.Q, nullableStringValue(e.Q2), id)
	if err != nil {
		return HandleSQLError(err)
	}

	s.logger.DebugWithContext(ctx, "edge appended",
		zap.String("subject", id),
		zap.String("predicate", e.P),
		zap.String("object", e.O),
	)
	return nil
}
