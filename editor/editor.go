// Package editor performs structural mutations on a collection: adding,
// renaming, and removing fields across both the document population and
// the collection's declared schema.
//
// Every mutation is two-phase. Phase A rewrites the documents and must
// succeed for the operation to succeed. Phase B rewrites the declared
// schema and is advisory: documents are ground truth, the declaration is
// a best-effort index over them, so a Phase B failure is logged and
// swallowed rather than surfaced.
package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/docgrid/docgrid/schema"
	"github.com/docgrid/docgrid/store"
)

// Service owns the schema read/mutate path for one database.
type Service struct {
	store store.Store
	log   *slog.Logger

	// Two-phase sequences against the same collection must not
	// interleave their read-modify-write of the declaration.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: st,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockCollection serializes mutations per collection. Returns the unlock.
func (s *Service) lockCollection(collection string) func() {
	s.mu.Lock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ReadSchema returns the collection's declaration, fresh from the store.
// An explicit validator wins; otherwise the declaration is inferred from
// a document sample. Only a transport failure is an error; "no schema"
// never is.
func (s *Service) ReadSchema(ctx context.Context, collection string) (schema.Declaration, error) {
	validator, err := s.store.Validator(ctx, collection)
	if err != nil {
		return schema.Declaration{}, err
	}
	if fields, ok := schema.ParseValidator(validator); ok {
		return schema.Declaration{Fields: fields, Provenance: schema.ProvenanceExplicit}, nil
	}

	samples, err := s.store.Sample(ctx, collection, schema.SampleLimit)
	if err != nil {
		return schema.Declaration{}, err
	}
	if len(samples) == 0 {
		return schema.Declaration{Fields: map[string]schema.FieldType{}, Provenance: schema.ProvenanceUnset}, nil
	}
	return schema.Declaration{Fields: schema.Infer(samples), Provenance: schema.ProvenanceInferred}, nil
}
