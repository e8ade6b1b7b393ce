package document

import (
	"errors"
	"testing"
)

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{
			name: "valid work",
			doc: Document{
				ID: "W1", Type: TypeWork, Work: &Work{Year: 2020},
				Outgoing: []Edge{{P: PredAuthor, O: "A1", Q: 1}},
			},
		},
		{
			name: "valid concept without payload",
			doc:  Document{ID: "C1", Type: TypeConcept, DisplayName: "Solar Flares"},
		},
		{
			name:    "missing id",
			doc:     Document{Type: TypeAuthor},
			wantErr: ErrEmptyID,
		},
		{
			name:    "unknown type",
			doc:     Document{ID: "X", Type: "Person"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "payload of another type",
			doc:     Document{ID: "A1", Type: TypeAuthor, Work: &Work{Year: 2020}},
			wantErr: ErrPayloadMismatch,
		},
		{
			name:    "unknown predicate",
			doc:     Document{ID: "A1", Type: TypeAuthor, Outgoing: []Edge{{P: "cites", O: "W1"}}},
			wantErr: ErrInvalidPredicate,
		},
		{
			name:    "empty object",
			doc:     Document{ID: "A1", Type: TypeAuthor, Outgoing: []Edge{{P: PredRelation}}},
			wantErr: ErrEmptyObject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	if got, err := ParseType("Institution"); err != nil || got != TypeInstitution {
		t.Errorf("ParseType(Institution) = %q, %v", got, err)
	}
	if got, err := ParseType(""); err != nil || got != "" {
		t.Errorf("ParseType(\"\") = %q, %v", got, err)
	}
	if _, err := ParseType("author"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("ParseType(author) error = %v, want ErrInvalidType", err)
	}
}

func TestDocument_Href(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeAuthor, "author:X"},
		{TypeWork, "work:X"},
		{TypeInstitution, "affil:X"},
		{TypeConcept, "concept:X"},
		{"Other", "_:X"},
	}
	for _, tt := range tests {
		d := Document{ID: "X", Type: tt.typ}
		if got := d.Href(); got != tt.want {
			t.Errorf("Href() for %s = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestDocument_ObjectsAndEdgeTo(t *testing.T) {
	d := Document{
		ID:   "W1",
		Type: TypeWork,
		Outgoing: []Edge{
			{P: PredAuthor, O: "A1", Q: 1},
			{P: PredAffil, O: "I1", Q: 1},
			{P: PredAuthor, O: "A2", Q: 2},
		},
	}

	authors := d.Objects(PredAuthor)
	if len(authors) != 2 || authors[0] != "A1" || authors[1] != "A2" {
		t.Errorf("Objects(author) = %v", authors)
	}

	e, ok := d.EdgeTo("A2")
	if !ok || e.Q != 2 {
		t.Errorf("EdgeTo(A2) = %+v, %v", e, ok)
	}
	if _, ok := d.EdgeTo("nope"); ok {
		t.Error("EdgeTo(nope) found an edge")
	}
}

func TestOpenAlexLinks(t *testing.T) {
	if got := OpenAlexAPILink("https://openalex.org/C121332964"); got != "https://api.openalex.org/C121332964" {
		t.Errorf("OpenAlexAPILink = %q", got)
	}
	if got := OpenAlexAPILink("https://orcid.org/0000-0001"); got != "https://orcid.org/0000-0001" {
		t.Errorf("non-OpenAlex id rewritten: %q", got)
	}

	concept := Document{ID: "https://openalex.org/C1", Type: TypeConcept}
	if got := concept.OpenAlexLink(); got != "https://api.openalex.org/C1" {
		t.Errorf("concept OpenAlexLink = %q", got)
	}
	author := Document{ID: "0000-0002", Type: TypeAuthor, Author: &Author{OpenAlexID: "https://openalex.org/A9"}}
	if got := author.OpenAlexLink(); got != "https://api.openalex.org/A9" {
		t.Errorf("author OpenAlexLink = %q", got)
	}
	if got := (&Document{ID: "I1", Type: TypeInstitution}).OpenAlexLink(); got != "" {
		t.Errorf("institution OpenAlexLink = %q, want empty", got)
	}
}

func TestDocument_ADSID(t *testing.T) {
	d := Document{ID: "https://ui.adsabs.harvard.edu/affiliations/A00123", Type: TypeInstitution}
	if got := d.ADSID(); got != "A00123" {
		t.Errorf("ADSID() = %q", got)
	}
	plain := Document{ID: "A00124", Type: TypeInstitution}
	if got := plain.ADSID(); got != "A00124" {
		t.Errorf("ADSID() = %q", got)
	}
}
