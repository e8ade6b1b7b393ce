package association

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage"
	"github.com/helioweb/helioweb/internal/storage/sqlite"
	"github.com/helioweb/helioweb/internal/storage/sqlite/sqlitetest"
)

const orcid = "0000-0002-1825-0097"

func newTestService(t *testing.T, opts ...Option) (*Service, *sqlite.Store) {
	t.Helper()
	s := sqlitetest.NewStore(t,
		sqlitetest.Author("A1", "Ada", sqlitetest.Relation("C1", 90)),
		sqlitetest.Author("A2", "Bob"),
		sqlitetest.Concept("C1", "Solar Flares"),
		sqlitetest.Concept("C2", "Coronal Mass Ejections"),
		sqlitetest.Institution("I1", "Observatory"),
		sqlitetest.Work("W1", "Flares", 2020, []string{"A1"}, "I1"),
	)
	return New(s, opts...), s
}

func TestSubmit_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		sub        Submission
		wantErr    error
		wantReason string
	}{
		{
			name:    "no submitter",
			sub:     Submission{PageID: "A1", Triple: "A1 dcterms:relation C2", Submitter: "  "},
			wantErr: ErrUnauthorized,
		},
		{
			name:    "missing page",
			sub:     Submission{PageID: "nope", Triple: "nope dcterms:relation C2", Submitter: orcid},
			wantErr: storage.ErrNotFound,
		},
		{
			name:       "two tokens",
			sub:        Submission{PageID: "A1", Triple: "A1 dcterms:relation", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonMalformed,
		},
		{
			name:       "bad escape",
			sub:        Submission{PageID: "A1", Triple: "A1%zz dcterms:relation C2", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonMalformed,
		},
		{
			name:       "predicate not assertable",
			sub:        Submission{PageID: "W1", Triple: "W1 affil I1", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonPredicate,
		},
		{
			name:       "concept as subject from an author page",
			sub:        Submission{PageID: "A1", Triple: "C2 dcterms:relation A2", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonRole,
		},
		{
			name:       "work triple whose object is not the author page",
			sub:        Submission{PageID: "A1", Triple: "W1 author A2", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonRole,
		},
		{
			name:       "predicate foreign to the page type",
			sub:        Submission{PageID: "I1", Triple: "A1 dcterms:relation I1", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonRole,
		},
		{
			name:    "missing object",
			sub:     Submission{PageID: "A1", Triple: "A1 dcterms:relation C404", Submitter: orcid},
			wantErr: storage.ErrNotFound,
		},
		{
			name:       "object of the wrong type",
			sub:        Submission{PageID: "A1", Triple: "A1 dcterms:relation W1", Submitter: orcid},
			wantErr:    ErrUnprocessable,
			wantReason: ReasonRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.sub)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantReason, Reason(err))
		})
	}
}

func TestSubmit_MissingObjectNamesID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), Submission{PageID: "A1", Triple: "A1 dcterms:relation C404", Submitter: orcid})
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "C404")
}

func TestSubmit_FromAuthorPage(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	got, err := svc.Submit(ctx, Submission{PageID: "A1", Triple: "A1 dcterms:relation C2", Submitter: orcid})
	require.NoError(t, err)
	want := document.Edge{P: document.PredRelation, O: "C2", Q: document.CrowdQuality, Q2: orcid}
	assert.Equal(t, "A1", got.Subject)
	assert.Equal(t, want, got.Edge)

	a1, err := s.FindOne(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, a1.Outgoing, 2)
	assert.Equal(t, want, a1.Outgoing[1])
}

func TestSubmit_WritesOntoTripleSubject(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	// From the concept page, the edge belongs to the author.
	_, err := svc.Submit(ctx, Submission{PageID: "C2", Triple: "A2 dcterms:relation C2", Submitter: orcid})
	require.NoError(t, err)

	// From the author page, an authorship edge belongs to the work.
	_, err = svc.Submit(ctx, Submission{PageID: "A2", Triple: url.QueryEscape("W1 author A2"), Submitter: orcid})
	require.NoError(t, err)

	a2, err := s.FindOne(ctx, "A2")
	require.NoError(t, err)
	assert.Equal(t, []string{"C2"}, a2.Objects(document.PredRelation))

	c2, err := s.FindOne(ctx, "C2")
	require.NoError(t, err)
	assert.Empty(t, c2.Outgoing)

	w1, err := s.FindOne(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, w1.Objects(document.PredAuthor))
}

func TestSubmit_NotIdempotent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "asserted.jsonl")
	svc, s := newTestService(t, WithAssertionLog(logPath))
	ctx := context.Background()

	sub := Submission{PageID: "A1", Triple: "A1 dcterms:relation C1", Submitter: orcid}
	for range 2 {
		_, err := svc.Submit(ctx, sub)
		require.NoError(t, err)
	}

	a1, err := s.FindOne(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C1", "C1"}, a1.Objects(document.PredRelation))

	logged, err := storage.ReadAllAsserted(logPath)
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestSubmit_NoWriteOnFailure(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "asserted.jsonl")
	svc, s := newTestService(t, WithAssertionLog(logPath))
	ctx := context.Background()

	_, err := svc.Submit(ctx, Submission{PageID: "A1", Triple: "A1 dcterms:relation W1", Submitter: orcid})
	require.Error(t, err)

	a1, err := s.FindOne(ctx, "A1")
	require.NoError(t, err)
	assert.Len(t, a1.Outgoing, 1)

	logged, err := storage.ReadAllAsserted(logPath)
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestSubmit_JournalFailureKeepsEdge(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	core, logs := observer.New(zap.WarnLevel)
	svc, s := newTestService(t,
		WithAssertionLog(filepath.Join(blocker, "asserted.jsonl")),
		WithLogger(&logger.ZapLogger{Logger: zap.New(core)}),
	)
	ctx := context.Background()

	got, err := svc.Submit(ctx, Submission{PageID: "A2", Triple: "A2 dcterms:relation C2", Submitter: orcid})
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Subject)

	a2, err := s.FindOne(ctx, "A2")
	require.NoError(t, err)
	assert.Equal(t, []string{"C2"}, a2.Objects(document.PredRelation))

	entries := logs.FilterMessage("edge stored but not journaled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "A2", entries[0].ContextMap()["subject"])
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "", Reason(errors.New("other")))
	assert.Equal(t, ReasonRole, Reason(unprocessable(ReasonRole, "x")))
	assert.True(t, errors.Is(unprocessable(ReasonMalformed, "x"), ErrUnprocessable))
}
