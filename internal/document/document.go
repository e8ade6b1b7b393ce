// Package document defines the core domain types for the scholarly document graph.
//
// Every entity lives in one polymorphic collection. A Document carries the shared
// base record (id, type, display name, outgoing edges) plus exactly one typed
// payload selected by Type.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// Type discriminates the Document variants.
type Type string

const (
	TypeAuthor      Type = "Author"
	TypeWork        Type = "Work"
	TypeInstitution Type = "Institution"
	TypeConcept     Type = "Concept"
)

// validTypes is the set of recognized document types.
var validTypes = map[Type]bool{
	TypeAuthor:      true,
	TypeWork:        true,
	TypeInstitution: true,
	TypeConcept:     true,
}

// IsValid reports whether t is one of the four document types.
func (t Type) IsValid() bool {
	return validTypes[t]
}

// ParseType converts a raw type name (as given on a command line or query string).
// An empty string yields the empty Type, meaning "any type".
func ParseType(s string) (Type, error) {
	if s == "" {
		return "", nil
	}
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Predicates of the controlled edge vocabulary.
const (
	PredAuthor   = "author"           // Work -> Author
	PredAffil    = "affil"            // Work -> Institution
	PredBroader  = "skos:broader"     // Concept -> Concept, Institution -> Institution
	PredRelation = "dcterms:relation" // Author -> Concept
)

// validPredicates is the set of recognized predicates.
var validPredicates = map[string]bool{
	PredAuthor:   true,
	PredAffil:    true,
	PredBroader:  true,
	PredRelation: true,
}

// IsValidPredicate reports whether p belongs to the edge vocabulary.
func IsValidPredicate(p string) bool {
	return validPredicates[p]
}

// CrowdQuality is the quality assigned to crowd-asserted edges.
const CrowdQuality = 100

// Edge is a directed, typed, weighted relation embedded in its source Document.
type Edge struct {
	P  string `json:"p"`            // Predicate
	O  string `json:"o"`            // Object document id
	Q  int    `json:"q"`            // Quality / weight
	Q2 string `json:"q2,omitempty"` // Attribution of crowd-asserted edges
}

// Document is one entity of the graph.
type Document struct {
	// Identity
	ID   string `json:"id"`
	Type Type   `json:"type"`

	DisplayName string `json:"display_name,omitempty"`
	Outgoing    []Edge `json:"outgoing,omitempty"`

	// Payload; exactly the one matching Type is set.
	Author      *Author      `json:"author,omitempty"`
	Work        *Work        `json:"work,omitempty"`
	Institution *Institution `json:"institution,omitempty"`
	Concept     *Concept     `json:"concept,omitempty"`
}

// Author is the payload of an Author document.
type Author struct {
	ORCID      string `json:"orcid,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty"`
}

// Work is the payload of a Work document.
type Work struct {
	Year       int    `json:"year"`
	Bibcode    string `json:"bibcode,omitempty"` // ADS bibcode
	DOI        string `json:"doi,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty"`
}

// Institution is the payload of an Institution document.
type Institution struct {
	ROR string `json:"ror,omitempty"`
}

// Concept is the payload of a Concept document.
type Concept struct {
	Level int `json:"level,omitempty"` // OpenAlex concept level, 0 = root
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id is required")
	ErrInvalidType      = errors.New("unknown document type")
	ErrPayloadMismatch  = errors.New("payload does not match document type")
	ErrInvalidPredicate = errors.New("unknown edge predicate")
	ErrEmptyObject      = errors.New("edge object is required")
)

// Validate checks the structural invariants of a single document.
// Cross-document invariants are checked by CheckIntegrity.
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if err := d.validatePayload(); err != nil {
		return err
	}
	for i, e := range d.Outgoing {
		if !IsValidPredicate(e.P) {
			return fmt.Errorf("edge %d: %w: %q", i, ErrInvalidPredicate, e.P)
		}
		if e.O == "" {
			return fmt.Errorf("edge %d: %w", i, ErrEmptyObject)
		}
	}
	return nil
}

func (d *Document) validatePayload() error {
	set := map[Type]bool{
		TypeAuthor:      d.Author != nil,
		TypeWork:        d.Work != nil,
		TypeInstitution: d.Institution != nil,
		TypeConcept:     d.Concept != nil,
	}
	for t, present := range set {
		if present && t != d.Type {
			return fmt.Errorf("%w: %s document carries %s payload", ErrPayloadMismatch, d.Type, t)
		}
	}
	return nil
}

// Year returns the publication year of a Work, or 0 for other types.
func (d *Document) Year() int {
	if d.Work == nil {
		return 0
	}
	return d.Work.Year
}

// Objects returns the objects of all outgoing edges with predicate p, in edge order.
func (d *Document) Objects(p string) []string {
	var ids []string
	for _, e := range d.Outgoing {
		if e.P == p {
			ids = append(ids, e.O)
		}
	}
	return ids
}

// EdgeTo returns the first outgoing edge pointing at id, if any.
func (d *Document) EdgeTo(id string) (Edge, bool) {
	for _, e := range d.Outgoing {
		if e.O == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Href returns the page reference of a document: a type prefix and its id.
func (d *Document) Href() string {
	switch d.Type {
	case TypeAuthor:
		return "author:" + d.ID
	case TypeConcept:
		return "concept:" + d.ID
	case TypeInstitution:
		return "affil:" + d.ID
	case TypeWork:
		return "work:" + d.ID
	default:
		return "_:" + d.ID
	}
}

// ADSID returns the trailing path segment of an Institution id, which is its
// identifier in the ADS affiliations list.
func (d *Document) ADSID() string {
	return d.ID[strings.LastIndex(d.ID, "/")+1:]
}

// OpenAlexAPILink rewrites an OpenAlex entity URI into its API URL.
// Ids that are not OpenAlex URIs are returned unchanged.
func OpenAlexAPILink(id string) string {
	return strings.Replace(id, "https://openalex.org", "https://api.openalex.org", 1)
}

// OpenAlexLink returns the OpenAlex API link for the document, or "" if it has none.
func (d *Document) OpenAlexLink() string {
	switch {
	case d.Author != nil && d.Author.OpenAlexID != "":
		return OpenAlexAPILink(d.Author.OpenAlexID)
	case d.Work != nil && d.Work.OpenAlexID != "":
		return OpenAlexAPILink(d.Work.OpenAlexID)
	case d.Type == TypeConcept && strings.HasPrefix(d.ID, "https://openalex.org"):
		return OpenAlexAPILink(d.ID)
	}
	return ""
}
