// Package mem is an in-memory Store backend. It exists for tests and for
// running the editor without a database; it keeps documents in insertion
// order and applies the same field semantics the real backend does.
package mem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/store"
)

type collection struct {
	docs          []document.Document
	validator     map[string]any
	validationOff bool
}

// Store implements store.Store over process memory.
type Store struct {
	mu    sync.Mutex
	colls map[string]*collection

	// Error injection for tests. SetValidatorErr fails the next
	// SetValidatorFailures calls to SetValidator (every call when the
	// count is negative). ValidatorErr fails every Validator read.
	SetValidatorErr      error
	SetValidatorFailures int
	ValidatorErr         error
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{colls: make(map[string]*collection)}
}

// Seed replaces the collection's contents, creating it if needed.
// Documents without an _id get one assigned.
func (s *Store) Seed(name string, docs []document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	c.docs = nil
	for _, d := range docs {
		d = d.Clone()
		if !d.Has(document.IDField) {
			d[document.IDField] = newID()
		}
		c.docs = append(c.docs, d)
	}
}

// coll returns the named collection, creating it lazily. Only write paths
// use it; reads go through lookup so probing a collection that does not
// exist never makes it appear. Callers hold mu.
func (s *Store) coll(name string) *collection {
	c, ok := s.colls[name]
	if !ok {
		c = &collection{}
		s.colls[name] = c
	}
	return c
}

// lookup returns the named collection or nil. Callers hold mu.
func (s *Store) lookup(name string) *collection {
	return s.colls[name]
}

func newID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.colls))
	for name := range s.colls {
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) Stats(ctx context.Context, name string) (store.CollectionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return store.CollectionStats{}, nil
	}

	count := int64(len(c.docs))
	var total int64
	for _, d := range c.docs {
		if bs, err := json.Marshal(d); err == nil {
			total += int64(len(bs))
		}
	}
	stats := store.CollectionStats{EstimatedCount: count, ExactCount: &count}
	if count > 0 {
		avg := total / count
		stats.AvgDocumentSize = &avg
		stats.TotalSize = &total
	}
	return stats, nil
}

func (s *Store) FindPage(ctx context.Context, name string, page, limit int) (store.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	c := s.lookup(name)
	if c == nil {
		return store.Page{Data: []document.Document{}, Page: page, Limit: limit, HasPrev: page > 1}, nil
	}
	total := len(c.docs)
	skip := (page - 1) * limit
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	data := make([]document.Document, 0, end-skip)
	for _, d := range c.docs[skip:end] {
		data = append(data, d.Clone())
	}
	return store.Page{
		Data:    data,
		Total:   int64(total),
		Page:    page,
		Limit:   limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	}, nil
}

func (s *Store) Sample(ctx context.Context, name string, limit int) ([]document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return nil, nil
	}

	n := len(c.docs)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]document.Document, 0, n)
	for _, d := range c.docs[:n] {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, name string, doc document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)

	doc = doc.Clone()
	if !doc.Has(document.IDField) {
		doc[document.IDField] = newID()
	} else if s.findLocked(c, doc.ID()) >= 0 {
		return nil, store.ConflictError(document.IDField, "duplicate document id")
	}
	c.docs = append(c.docs, doc)
	return doc.Clone(), nil
}

func (s *Store) UpdateByID(ctx context.Context, name, id string, fields document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)

	i := s.findLocked(c, id)
	if i < 0 {
		return nil, store.NotFoundError("document not found")
	}
	for k, v := range fields {
		if k == document.IDField {
			continue
		}
		c.docs[i][k] = v
	}
	return c.docs[i].Clone(), nil
}

func (s *Store) DeleteByID(ctx context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)

	i := s.findLocked(c, id)
	if i < 0 {
		return store.NotFoundError("document not found")
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return nil
}

func (s *Store) findLocked(c *collection, id string) int {
	if c == nil {
		return -1
	}
	for i, d := range c.docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

func (s *Store) HasField(ctx context.Context, name, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return false, nil
	}
	for _, d := range c.docs {
		if d.Has(field) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetFieldWhereMissing(ctx context.Context, name, field string, value any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return 0, nil
	}
	var n int64
	for _, d := range c.docs {
		if !d.Has(field) {
			d[field] = value
			n++
		}
	}
	return n, nil
}

func (s *Store) RenameField(ctx context.Context, name, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return 0, nil
	}
	var n int64
	for _, d := range c.docs {
		if v, ok := d[oldName]; ok {
			delete(d, oldName)
			d[newName] = v
			n++
		}
	}
	return n, nil
}

func (s *Store) UnsetField(ctx context.Context, name, field string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return 0, nil
	}
	var n int64
	for _, d := range c.docs {
		if d.Has(field) {
			delete(d, field)
			n++
		}
	}
	return n, nil
}

func (s *Store) Validator(ctx context.Context, name string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ValidatorErr != nil {
		return nil, s.ValidatorErr
	}
	// The validator document stays attached while validation is off, same
	// as collMod validationLevel=off leaves it readable.
	c, ok := s.colls[name]
	if !ok {
		return nil, nil
	}
	return c.validator, nil
}

func (s *Store) SetValidator(ctx context.Context, name string, validator map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetValidatorErr != nil && s.SetValidatorFailures != 0 {
		if s.SetValidatorFailures > 0 {
			s.SetValidatorFailures--
		}
		return s.SetValidatorErr
	}
	c := s.coll(name)
	c.validator = validator
	c.validationOff = false
	return nil
}

func (s *Store) DisableValidation(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.lookup(name); c != nil {
		c.validationOff = true
	}
	return nil
}

// ValidationDisabled reports whether the collection currently has
// validation switched off. Test hook.
func (s *Store) ValidationDisabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	return c != nil && c.validationOff
}

// Documents returns a snapshot of the collection's contents. Test hook.
func (s *Store) Documents(name string) []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(name)
	if c == nil {
		return nil
	}
	out := make([]document.Document, 0, len(c.docs))
	for _, d := range c.docs {
		out = append(out, d.Clone())
	}
	return out
}
