package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/storage"
	"github.com/helioweb/helioweb/internal/storage/sqlite/sqlitetest"
)

// scenario is the minimal graph: one author related to one concept, with one
// work affiliated with one institution.
func scenario() []document.Document {
	return []document.Document{
		{ID: "A1", Type: document.TypeAuthor, DisplayName: "Ada", Outgoing: []document.Edge{
			{P: document.PredRelation, O: "C1", Q: 90},
		}},
		{ID: "C1", Type: document.TypeConcept, DisplayName: "Solar Flares"},
		{ID: "W1", Type: document.TypeWork, DisplayName: "Flares", Work: &document.Work{Year: 2020}, Outgoing: []document.Edge{
			{P: document.PredAuthor, O: "A1", Q: 1},
			{P: document.PredAffil, O: "I1", Q: 1},
		}},
		{ID: "I1", Type: document.TypeInstitution, DisplayName: "Observatory"},
	}
}

func docIDs(docs []document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestScenario(t *testing.T) {
	q := New(sqlitetest.NewStore(t, scenario()...))
	ctx := context.Background()

	works, err := q.WorksByAuthor(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"W1"}, docIDs(works))

	concepts, err := q.ConceptsOf(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, "C1", concepts[0].ID)
	assert.Equal(t, "Solar Flares", concepts[0].DisplayName)
	assert.Equal(t, 90, concepts[0].Q)

	insts, err := q.CollaboratingInstitutions(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, docIDs(insts))

	authors, err := q.CollaboratingAuthors(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, docIDs(authors))

	coauthors, err := q.Coauthors(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, coauthors)
}

func TestCoauthors(t *testing.T) {
	q := New(sqlitetest.NewStore(t,
		sqlitetest.Author("A1", "Ada"),
		sqlitetest.Author("A2", "Bob"),
		sqlitetest.Author("A3", "Cyd"),
		sqlitetest.Author("A4", "Dee"),
		// A1 listed several times on its own work.
		sqlitetest.Work("W1", "Solo", 2019, []string{"A1", "A1", "A1"}),
		sqlitetest.Work("W2", "Pair", 2020, []string{"A1", "A3"}),
		sqlitetest.Work("W3", "Trio", 2021, []string{"A3", "A1", "A2"}),
		sqlitetest.Work("W4", "Elsewhere", 2021, []string{"A4"}),
		// Dangling author edge: no such document.
		sqlitetest.Work("W5", "Ghost", 2022, []string{"A1", "ghost"}),
	))
	ctx := context.Background()

	coauthors, err := q.Coauthors(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A3"}, docIDs(coauthors), "deduplicated, sorted by name, self and dangling ids excluded")

	coauthors, err = q.Coauthors(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, coauthors)
}

func TestWorksOrdering(t *testing.T) {
	q := New(sqlitetest.NewStore(t,
		sqlitetest.Author("A1", "Ada"),
		sqlitetest.Institution("I1", "Observatory"),
		sqlitetest.Work("W1", "Beta", 2020, []string{"A1"}, "I1"),
		sqlitetest.Work("W2", "Alpha", 2020, []string{"A1"}, "I1"),
		sqlitetest.Work("W3", "Gamma", 2018, []string{"A1"}, "I1"),
	))
	ctx := context.Background()

	byAuthor, err := q.WorksByAuthor(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2", "W3"}, docIDs(byAuthor), "year then name, descending")

	byInst, err := q.WorksByInstitution(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, []string{"W3", "W2", "W1"}, docIDs(byInst), "year then name, ascending")
}

func TestConceptsOf_Ordering(t *testing.T) {
	q := New(sqlitetest.NewStore(t,
		sqlitetest.Author("A1", "Ada",
			sqlitetest.Relation("C1", 10),
			sqlitetest.Relation("C2", 50),
			sqlitetest.Relation("C3", 50),
			sqlitetest.Relation("C1", document.CrowdQuality),
			sqlitetest.Relation("missing", 99),
		),
		sqlitetest.Concept("C1", "Flares"),
		sqlitetest.Concept("C2", "Corona"),
		sqlitetest.Concept("C3", "Winds"),
	))

	concepts, err := q.ConceptsOf(context.Background(), "A1")
	require.NoError(t, err)
	require.Len(t, concepts, 3)
	assert.Equal(t, "C3", concepts[0].ID, "ties broken by name, descending")
	assert.Equal(t, "C2", concepts[1].ID)
	assert.Equal(t, "C1", concepts[2].ID)
	assert.Equal(t, 10, concepts[2].Q, "the first edge to a concept gives its quality, later crowd edges do not")
}

func TestWorkMembers(t *testing.T) {
	q := New(sqlitetest.NewStore(t,
		sqlitetest.Author("A1", "Zed"),
		sqlitetest.Author("A2", "Amy"),
		sqlitetest.Institution("I1", "Observatory"),
		sqlitetest.Work("W1", "Flares", 2020, []string{"A1", "A2"}, "I1", "nowhere"),
	))
	ctx := context.Background()

	authors, err := q.AuthorsOfWork(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "A2", authors[0].ID)
	assert.Equal(t, 2, authors[0].Q)
	assert.Equal(t, "A1", authors[1].ID)
	assert.Equal(t, 1, authors[1].Q)

	insts, err := q.InstitutionsOfWork(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, docIDs(insts))
}

func TestParentsAndChildren(t *testing.T) {
	q := New(sqlitetest.NewStore(t,
		sqlitetest.Concept("R", "Astronomy"),
		sqlitetest.Concept("C1", "Solar Physics", "R"),
		sqlitetest.Concept("G", "Flares", "C1", "R"),
		sqlitetest.Institution("I1", "University"),
		sqlitetest.Institution("I2", "Department", "I1", "R"),
		sqlitetest.Author("A1", "Ada", sqlitetest.Relation("G", 1)),
	))
	ctx := context.Background()

	parents, err := q.Parents(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "C1"}, docIDs(parents), "sorted by name")

	children, err := q.Children(ctx, "R")
	require.NoError(t, err)
	assert.Equal(t, []string{"G", "C1"}, docIDs(children), "every node pointing at R, same type only")

	parents, err = q.Parents(ctx, "I2")
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, docIDs(parents), "cross-typed broader edges ignored")

	authors, err := q.ConceptAuthors(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, docIDs(authors))

	none, err := q.Children(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch(t *testing.T) {
	q := New(sqlitetest.NewStore(t, scenario()...))

	hits, err := q.Search(context.Background(), "solar flares", "")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "C1", hits[0].ID, "full match ranks first")
	assert.Equal(t, "concept:C1", hits[0].Href)

	hits, err = q.Search(context.Background(), "flares", document.TypeWork)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "work:W1", hits[0].Href)
}

func TestPages(t *testing.T) {
	q := New(sqlitetest.NewStore(t, scenario()...))
	ctx := context.Background()

	author, err := q.AuthorPage(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", author.Author.DisplayName)
	assert.Len(t, author.Concepts, 1)
	assert.Equal(t, []string{"W1"}, docIDs(author.Works))
	assert.Equal(t, []string{"I1"}, docIDs(author.CollaboratingInstitutions))

	work, err := q.WorkPage(ctx, "W1")
	require.NoError(t, err)
	assert.Len(t, work.Authors, 1)
	assert.Equal(t, []string{"I1"}, docIDs(work.Institutions))

	inst, err := q.InstitutionPage(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, "I1", inst.ADSID)
	assert.Equal(t, []string{"A1"}, docIDs(inst.CollaboratingAuthors))

	concept, err := q.ConceptPage(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, docIDs(concept.Authors))

	_, err = q.AuthorPage(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = q.AuthorPage(ctx, "W1")
	require.ErrorIs(t, err, storage.ErrNotFound, "a page of the wrong type does not exist")
}
