package document

import "sort"

// Problem kinds reported by CheckIntegrity.
const (
	ProblemDanglingObject = "dangling_object" // edge object is not a known document
	ProblemWrongSubject   = "wrong_subject"   // predicate not allowed on this document type
	ProblemWrongObject    = "wrong_object"    // edge object has the wrong type
	ProblemBroaderCycle   = "broader_cycle"   // skos:broader edges form a cycle
)

// Problem describes one integrity violation found in a document set.
type Problem struct {
	Kind      string `json:"kind"`
	DocID     string `json:"doc_id"`
	Predicate string `json:"predicate,omitempty"`
	Object    string `json:"object,omitempty"`
}

// edgeShape is the subject and object types a predicate may connect.
// For skos:broader the object type must equal the subject type.
type edgeShape struct {
	subjects []Type
	object   Type
}

var edgeShapes = map[string]edgeShape{
	PredAuthor:   {subjects: []Type{TypeWork}, object: TypeAuthor},
	PredAffil:    {subjects: []Type{TypeWork}, object: TypeInstitution},
	PredRelation: {subjects: []Type{TypeAuthor}, object: TypeConcept},
	PredBroader:  {subjects: []Type{TypeConcept, TypeInstitution}},
}

// AllowedOn reports whether predicate p may appear on a document of type t.
func AllowedOn(p string, t Type) bool {
	shape, ok := edgeShapes[p]
	if !ok {
		return false
	}
	for _, s := range shape.subjects {
		if s == t {
			return true
		}
	}
	return false
}

// ObjectType returns the type an edge with predicate p on a document of type t must point at.
func ObjectType(p string, t Type) Type {
	if p == PredBroader {
		return t
	}
	return edgeShapes[p].object
}

// CheckIntegrity validates cross-document invariants over a complete document set.
// Problems are returned sorted by document id, then predicate, then object.
func CheckIntegrity(docs []Document) []Problem {
	types := make(map[string]Type, len(docs))
	for _, d := range docs {
		types[d.ID] = d.Type
	}

	var problems []Problem
	for _, d := range docs {
		for _, e := range d.Outgoing {
			p := Problem{DocID: d.ID, Predicate: e.P, Object: e.O}
			objType, known := types[e.O]
			switch {
			case !AllowedOn(e.P, d.Type):
				p.Kind = ProblemWrongSubject
			case !known:
				p.Kind = ProblemDanglingObject
			case objType != ObjectType(e.P, d.Type):
				p.Kind = ProblemWrongObject
			default:
				continue
			}
			problems = append(problems, p)
		}
	}

	problems = append(problems, findBroaderCycles(docs)...)

	sort.SliceStable(problems, func(i, j int) bool {
		a, b := problems[i], problems[j]
		if a.DocID != b.DocID {
			return a.DocID < b.DocID
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Object < b.Object
	})
	return problems
}

// findBroaderCycles runs a colouring DFS over skos:broader edges and reports
// each back edge, which closes a cycle.
func findBroaderCycles(docs []Document) []Problem {
	const (
		white = iota
		grey
		black
	)

	broader := make(map[string][]string, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		broader[d.ID] = d.Objects(PredBroader)
	}
	sort.Strings(ids)

	colour := make(map[string]int, len(docs))
	var problems []Problem

	var visit func(id string)
	visit = func(id string) {
		colour[id] = grey
		for _, next := range broader[id] {
			switch colour[next] {
			case grey:
				problems = append(problems, Problem{
					Kind:      ProblemBroaderCycle,
					DocID:     id,
					Predicate: PredBroader,
					Object:    next,
				})
			case white:
				if _, ok := broader[next]; ok {
					visit(next)
				}
			}
		}
		colour[id] = black
	}

	for _, id := range ids {
		if colour[id] == white {
			visit(id)
		}
	}
	return problems
}
