package editor

import (
	"context"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/schema"
	"github.com/docgrid/docgrid/store"
)

// AddField sets the field on every document lacking it and merges it into
// the declared schema. defaultRaw may be nil (field stored as null) or any
// JSON value, which is coerced to the target type first.
func (s *Service) AddField(ctx context.Context, collection, name string, fieldType schema.FieldType, defaultRaw any) (int64, error) {
	if name == "" {
		return 0, store.ValidationError("field name is required")
	}
	if !fieldType.Valid() {
		return 0, store.ValidationError("unknown field type " + string(fieldType))
	}
	if name == document.IDField {
		return 0, store.ConflictError(name, "field already exists")
	}

	unlock := s.lockCollection(collection)
	defer unlock()

	decl, declErr := s.ReadSchema(ctx, collection)
	if declErr != nil {
		// Schema read failed entirely; probe the documents directly so a
		// flaky validator read cannot let a duplicate through.
		exists, probeErr := s.store.HasField(ctx, collection, name)
		if probeErr != nil {
			return 0, declErr
		}
		if exists {
			return 0, store.ConflictError(name, "field already exists")
		}
	} else if decl.Has(name) {
		return 0, store.ConflictError(name, "field already exists")
	}

	value := schema.ConvertValue(defaultRaw, fieldType)

	// Phase A
	modified, err := s.store.SetFieldWhereMissing(ctx, collection, name, value)
	if err != nil {
		return 0, err
	}

	// Phase B. If the declaration could not be read we don't know what we
	// would be overwriting, so leave it alone.
	if declErr != nil {
		s.log.Warn("schema sync skipped, could not read declaration",
			"collection", collection, "op", "add_field", "err", declErr)
		return modified, nil
	}
	var next schema.Declaration
	if len(decl.Fields) > 0 {
		next = decl.WithField(name, fieldType)
	} else {
		// Empty collection, nothing inferred: declare the minimum.
		next = schema.Declaration{
			Fields: map[string]schema.FieldType{
				document.IDField: schema.TypeObjectID,
				name:             fieldType,
			},
			Provenance: schema.ProvenanceExplicit,
		}
	}
	s.writeSchema(ctx, collection, next, "add_field")

	return modified, nil
}

// RenameField renames the field on every document holding it, preserving
// values, then mirrors the rename into an explicit declaration when one
// exists.
func (s *Service) RenameField(ctx context.Context, collection, oldName, newName string) (int64, error) {
	if oldName == "" || newName == "" {
		return 0, store.ValidationError("both field names are required")
	}
	if oldName == newName {
		return 0, store.ValidationError("old and new field names must differ")
	}
	if oldName == document.IDField || newName == document.IDField {
		return 0, store.ValidationError("_id cannot be renamed")
	}

	unlock := s.lockCollection(collection)
	defer unlock()

	exists, err := s.store.HasField(ctx, collection, oldName)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, store.NotFoundError("field " + oldName + " not found in any document")
	}

	// Point-in-time probe; a concurrent writer can still slip a newName in
	// behind it. The per-collection lock closes the window for writers
	// going through this service.
	taken, err := s.store.HasField(ctx, collection, newName)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, store.ConflictError(newName, "field already exists")
	}

	// Phase A
	modified, err := s.store.RenameField(ctx, collection, oldName, newName)
	if err != nil {
		return 0, err
	}

	// Phase B
	decl, err := s.ReadSchema(ctx, collection)
	if err != nil {
		s.log.Warn("schema sync skipped, could not read declaration",
			"collection", collection, "op", "rename_field", "err", err)
		return modified, nil
	}
	if decl.Provenance == schema.ProvenanceExplicit && decl.Has(oldName) {
		s.writeSchema(ctx, collection, decl.WithRenamedField(oldName, newName), "rename_field")
	}

	return modified, nil
}

// RemoveField unsets the field on every document holding it. The stored
// validator could reject documents mid-unset, so validation is switched
// off for the duration and re-applied afterwards, whatever happens in
// between.
func (s *Service) RemoveField(ctx context.Context, collection, name string) (int64, error) {
	if name == "" {
		return 0, store.ValidationError("field name is required")
	}
	if name == document.IDField {
		return 0, store.ValidationError("_id cannot be removed")
	}

	unlock := s.lockCollection(collection)
	defer unlock()

	// Read the declaration before validation goes dark. It doubles as the
	// fallback validator: if anything below fails, re-applying it keeps the
	// declaration stale rather than gone.
	decl, declErr := s.ReadSchema(ctx, collection)
	var keep map[string]schema.FieldType
	if declErr == nil {
		keep = decl.Fields
	}

	if err := s.store.DisableValidation(ctx, collection); err != nil {
		return 0, err
	}

	// Phase A. Zero modified documents is fine; the field may simply not
	// be there.
	modified, err := s.store.UnsetField(ctx, collection, name)
	if err != nil {
		// Still try to bring validation back before failing.
		s.reapplyPermissive(ctx, collection, keep)
		return 0, err
	}

	// Phase B
	if declErr != nil || len(decl.Fields) == 0 {
		s.reapplyPermissive(ctx, collection, keep)
		return modified, nil
	}
	next := decl.WithoutField(name)
	next.Provenance = schema.ProvenanceExplicit
	if err := s.store.SetValidator(ctx, collection, schema.BuildValidator(next.Fields)); err != nil {
		s.log.Warn("schema sync failed",
			"collection", collection, "op", "remove_field", "field", name, "err", err)
		s.reapplyPermissive(ctx, collection, keep)
	}

	return modified, nil
}

// writeSchema is Phase B for the add/rename paths: best effort, logged.
func (s *Service) writeSchema(ctx context.Context, collection string, decl schema.Declaration, op string) {
	if err := s.store.SetValidator(ctx, collection, schema.BuildValidator(decl.Fields)); err != nil {
		s.log.Warn("schema sync failed", "collection", collection, "op", op, "err", err)
	}
}

// reapplyPermissive restores warn-only validation so the collection is
// never left with validation disabled. It rewrites the declaration that
// was in place before the mutation started; with no readable declaration
// it falls back to an unconstrained validator.
func (s *Service) reapplyPermissive(ctx context.Context, collection string, fields map[string]schema.FieldType) {
	if err := s.store.SetValidator(ctx, collection, schema.BuildValidator(fields)); err != nil {
		s.log.Error("could not re-enable validation", "collection", collection, "err", err)
	}
}
