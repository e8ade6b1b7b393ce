package document

import "testing"

func TestCheckIntegrity_Clean(t *testing.T) {
	docs := []Document{
		{ID: "A1", Type: TypeAuthor, Outgoing: []Edge{{P: PredRelation, O: "C2", Q: 90}}},
		{ID: "C1", Type: TypeConcept},
		{ID: "C2", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "C1"}}},
		{ID: "I1", Type: TypeInstitution},
		{ID: "W1", Type: TypeWork, Outgoing: []Edge{
			{P: PredAuthor, O: "A1", Q: 1},
			{P: PredAffil, O: "I1", Q: 1},
		}},
	}

	if problems := CheckIntegrity(docs); len(problems) != 0 {
		t.Errorf("expected no problems, got %+v", problems)
	}
}

func TestCheckIntegrity_EdgeShapes(t *testing.T) {
	docs := []Document{
		{ID: "A1", Type: TypeAuthor, Outgoing: []Edge{
			{P: PredRelation, O: "missing"},
			{P: PredAuthor, O: "A2"},
		}},
		{ID: "A2", Type: TypeAuthor},
		{ID: "C1", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "I1"}}},
		{ID: "I1", Type: TypeInstitution},
		{ID: "W1", Type: TypeWork, Outgoing: []Edge{{P: PredAffil, O: "C1"}}},
	}

	problems := CheckIntegrity(docs)
	want := []Problem{
		{Kind: ProblemWrongSubject, DocID: "A1", Predicate: PredAuthor, Object: "A2"},
		{Kind: ProblemDanglingObject, DocID: "A1", Predicate: PredRelation, Object: "missing"},
		{Kind: ProblemWrongObject, DocID: "C1", Predicate: PredBroader, Object: "I1"},
		{Kind: ProblemWrongObject, DocID: "W1", Predicate: PredAffil, Object: "C1"},
	}
	if len(problems) != len(want) {
		t.Fatalf("got %d problems, want %d: %+v", len(problems), len(want), problems)
	}
	for i := range want {
		if problems[i] != want[i] {
			t.Errorf("problem %d = %+v, want %+v", i, problems[i], want[i])
		}
	}
}

func TestCheckIntegrity_BroaderCycle(t *testing.T) {
	docs := []Document{
		{ID: "C1", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "C2"}}},
		{ID: "C2", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "C3"}}},
		{ID: "C3", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "C1"}}},
		{ID: "C4", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "C1"}}},
	}

	problems := CheckIntegrity(docs)
	if len(problems) != 1 {
		t.Fatalf("expected exactly one cycle report, got %+v", problems)
	}
	if problems[0].Kind != ProblemBroaderCycle {
		t.Errorf("Kind = %q, want %q", problems[0].Kind, ProblemBroaderCycle)
	}
}

func TestCheckIntegrity_MaterializedAncestorsAreNotCycles(t *testing.T) {
	// Each node stores an edge to every ancestor, not just its parent.
	docs := []Document{
		{ID: "root", Type: TypeConcept},
		{ID: "mid", Type: TypeConcept, Outgoing: []Edge{{P: PredBroader, O: "root"}}},
		{ID: "leaf", Type: TypeConcept, Outgoing: []Edge{
			{P: PredBroader, O: "mid"},
			{P: PredBroader, O: "root"},
		}},
	}

	if problems := CheckIntegrity(docs); len(problems) != 0 {
		t.Errorf("expected no problems, got %+v", problems)
	}
}

func TestAllowedOnAndObjectType(t *testing.T) {
	if !AllowedOn(PredBroader, TypeInstitution) {
		t.Error("skos:broader should be allowed on Institution")
	}
	if AllowedOn(PredBroader, TypeWork) {
		t.Error("skos:broader should not be allowed on Work")
	}
	if AllowedOn("cites", TypeWork) {
		t.Error("unknown predicate should not be allowed")
	}
	if got := ObjectType(PredBroader, TypeConcept); got != TypeConcept {
		t.Errorf("ObjectType(broader, Concept) = %q", got)
	}
	if got := ObjectType(PredAffil, TypeWork); got != TypeInstitution {
		t.Errorf("ObjectType(affil, Work) = %q", got)
	}
}
