// Package association validates and records crowd-asserted relation edges.
package association

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/helioweb/helioweb/internal/document"
	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage"
)

// Errors returned by Submit. Missing documents are reported with
// storage.ErrNotFound.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnprocessable = errors.New("unprocessable association")
)

// Unprocessable reasons.
const (
	ReasonMalformed = "malformed" // not a three-token triple
	ReasonPredicate = "predicate" // predicate not open to crowd assertion
	ReasonRole      = "role"      // endpoint does not play its role
)

// UnprocessableError describes why a triple was refused.
type UnprocessableError struct {
	Reason string
	Detail string
}

func (e *UnprocessableError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrUnprocessable, e.Reason, e.Detail)
}

func (e *UnprocessableError) Is(target error) bool {
	return target == ErrUnprocessable
}

// Reason returns the reason of an unprocessable error, or "" for any other error.
func Reason(err error) string {
	var ue *UnprocessableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return ""
}

func unprocessable(reason, format string, args ...any) error {
	return &UnprocessableError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// shape is the subject and object types of a predicate open to crowd assertion.
type shape struct {
	subject, object document.Type
}

var shapes = map[string]shape{
	document.PredRelation: {subject: document.TypeAuthor, object: document.TypeConcept},
	document.PredAuthor:   {subject: document.TypeWork, object: document.TypeAuthor},
}

// Submission is one proposed association.
type Submission struct {
	// PageID is the document the association was proposed from.
	PageID string `json:"page_id"`
	// Triple is "subject predicate object", possibly URL-encoded.
	Triple string `json:"triple"`
	// Submitter is the authenticated identity the edge is attributed to.
	Submitter string `json:"submitter"`
}

// Service records associations.
type Service struct {
	store   storage.Store
	logger  logger.Logger
	logPath string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithAssertionLog mirrors every accepted edge to the JSONL assertion log at
// path so that rebuilding the store preserves it.
func WithAssertionLog(path string) Option {
	return func(s *Service) { s.logPath = path }
}

// New returns a Service writing to store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: logger.NewNoopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub and appends the asserted edge, with quality
// document.CrowdQuality and attributed to the submitter, to the document named
// by the triple's subject. Every check runs before the write. Identical
// submissions are not deduplicated: each one appends a new edge.
func (s *Service) Submit(ctx context.Context, sub Submission) (*storage.AssertedEdge, error) {
	submitter := strings.TrimSpace(sub.Submitter)
	if submitter == "" {
		return nil, ErrUnauthorized
	}

	page, err := s.store.FindOne(ctx, sub.PageID)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", sub.PageID, err)
	}

	subject, predicate, object, err := parseTriple(sub.Triple)
	if err != nil {
		return nil, err
	}

	sh, ok := shapes[predicate]
	if !ok {
		return nil, unprocessable(ReasonPredicate, "%q cannot be asserted", predicate)
	}

	var other string
	var otherType document.Type
	switch page.Type {
	case sh.subject:
		if subject != page.ID {
			return nil, unprocessable(ReasonRole, "subject %s is not the %s page %s", subject, page.Type, page.ID)
		}
		other, otherType = object, sh.object
	case sh.object:
		if object != page.ID {
			return nil, unprocessable(ReasonRole, "object %s is not the %s page %s", object, page.Type, page.ID)
		}
		other, otherType = subject, sh.subject
	default:
		return nil, unprocessable(ReasonRole, "%s cannot be asserted from a %s page", predicate, page.Type)
	}

	otherDoc, err := s.store.FindOne(ctx, other)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", other, err)
	}
	if otherDoc.Type != otherType {
		return nil, unprocessable(ReasonRole, "%s is a %s, not a %s", other, otherDoc.Type, otherType)
	}

	asserted := storage.AssertedEdge{
		Subject: subject,
		Edge: document.Edge{
			P:  predicate,
			O:  object,
			Q:  document.CrowdQuality,
			Q2: submitter,
		},
	}
	if err := s.store.AppendEdge(ctx, asserted.Subject, asserted.Edge); err != nil {
		return nil, fmt.Errorf("appending edge to %s: %w", subject, err)
	}
	// The edge is live once appended. A journal failure is only logged; the
	// edge then does not survive the next rebuild.
	if s.logPath != "" {
		if err := storage.AppendAsserted(s.logPath, asserted); err != nil {
			s.logger.WarnWithContext(ctx, "edge stored but not journaled",
				zap.String("subject", subject),
				zap.String("journal", s.logPath),
				zap.Error(err),
			)
		}
	}

	s.logger.InfoWithContext(ctx, "association accepted",
		zap.String("subject", subject),
		zap.String("predicate", predicate),
		zap.String("object", object),
		zap.String("submitter", submitter),
	)
	return &asserted, nil
}

// parseTriple URL-decodes raw and splits it into exactly three tokens.
func parseTriple(raw string) (subject, predicate, object string, err error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", "", "", unprocessable(ReasonMalformed, "cannot decode %q: %v", raw, err)
	}
	tokens := strings.Fields(decoded)
	if len(tokens) != 3 {
		return "", "", "", unprocessable(ReasonMalformed, "want subject predicate object, got %d tokens", len(tokens))
	}
	return tokens[0], tokens[1], tokens[2], nil
}
