package transform

import (
	"io"
	"log/slog"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
	"github.com/dshills/richdoc/internal/schema"
)

// State is an alias for document.State for convenience.
type State = document.State

// Key is an alias for document.Key for convenience.
type Key = document.Key

// Normalizer validates and repairs the subtree rooted at key. The schema
// is passed through unexamined by this package.
type Normalizer interface {
	Normalize(s document.State, key document.Key, sch *schema.Schema) (document.State, error)
}

// Transformer is the semantic edit surface. It is stateless between
// calls; every method takes and returns a State value.
type Transformer struct {
	ap     *applier.Applier
	norm   Normalizer
	sch    *schema.Schema
	logger *slog.Logger
}

// Option configures a Transformer during creation.
type Option func(*Transformer)

// WithSchema sets the schema handed to the normalizer.
func WithSchema(s *schema.Schema) Option {
	return func(t *Transformer) { t.sch = s }
}

// WithNormalizer replaces the default schema normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(t *Transformer) { t.norm = n }
}

// WithLogger sets the logger for recoverable input warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Transformer. By default it validates with the schema
// normalizer and discards warnings.
func New(opts ...Option) *Transformer {
	t := &Transformer{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(t)
	}
	t.ap = applier.New(applier.WithLogger(t.logger))
	if t.norm == nil {
		t.norm = schema.NewNormalizer(t.ap)
	}
	return t
}

// CallOption adjusts a single transform call. The only recognized knob is
// the post-edit normalization pass, on by default.
type CallOption func(*callOptions)

type callOptions struct {
	normalize bool
}

// WithoutNormalize suppresses the post-edit normalization pass, enabling
// multi-step composition through temporarily-invalid intermediate states.
func WithoutNormalize() CallOption {
	return func(o *callOptions) { o.normalize = false }
}

func newCallOptions(opts []CallOption) callOptions {
	o := callOptions{normalize: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Apply runs raw operations through the applier with no normalization.
// An escape hatch for callers replaying persisted logs.
func (t *Transformer) Apply(s State, ops ...operation.Op) (State, error) {
	return t.ap.ApplyAll(s, ops)
}

// Normalize repairs the subtree rooted at key against the configured
// schema.
func (t *Transformer) Normalize(s State, key Key) (State, error) {
	return t.norm.Normalize(s, key, t.sch)
}

// normalizeAt runs the normalizer at scope when the call options ask for
// it and the scope still resolves.
func (t *Transformer) normalizeAt(s State, scope Key, o callOptions) (State, error) {
	if !o.normalize {
		return s, nil
	}
	return t.norm.Normalize(s, scope, t.sch)
}

// scopeParent returns the normalization scope for edits whose smallest
// sufficient scope is the target's parent: the parent key, or the node
// itself when it is the root.
func scopeParent(s State, key Key) Key {
	if parent, ok := s.Doc.Parent(key); ok {
		return parent
	}
	return key
}
