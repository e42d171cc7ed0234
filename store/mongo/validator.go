package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docgrid/docgrid/store"
)

// Validator reads the collection's stored validator through
// listCollections. A collection with no validator (or no collection at
// all) yields nil, nil.
func (s *Store) Validator(ctx context.Context, collection string) (map[string]any, error) {
	specs, err := s.db.ListCollectionSpecifications(ctx, bson.M{"name": collection})
	if err != nil {
		return nil, store.TransportError("could not read collection options", err)
	}
	if len(specs) == 0 {
		return nil, nil
	}

	var opts bson.M
	if err := bson.Unmarshal(specs[0].Options, &opts); err != nil {
		return nil, store.TransportError("could not decode collection options", err)
	}
	validator, ok := opts["validator"].(bson.M)
	if !ok {
		return nil, nil
	}
	return normalizeMap(validator), nil
}

// SetValidator installs the validator in warn-only moderate mode so a
// schema mismatch can never reject a write. Creates the collection first
// when it doesn't exist yet, since collMod has nothing to modify then.
func (s *Store) SetValidator(ctx context.Context, collection string, validator map[string]any) error {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		opts := options.CreateCollection().
			SetValidator(validator).
			SetValidationLevel("moderate").
			SetValidationAction("warn")
		if err := s.db.CreateCollection(ctx, collection, opts); err != nil {
			return store.TransportError("could not create collection with validator", err)
		}
		return nil
	}

	cmd := bson.D{
		{Key: "collMod", Value: collection},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "warn"},
	}
	if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
		return store.TransportError("collMod failed", err)
	}
	return nil
}

// DisableValidation switches validation off entirely. The existing
// validator document stays attached so it can be re-enabled later.
func (s *Store) DisableValidation(ctx context.Context, collection string) error {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil || !exists {
		return err
	}
	cmd := bson.D{
		{Key: "collMod", Value: collection},
		{Key: "validationLevel", Value: "off"},
	}
	if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
		return store.TransportError("could not disable validation", err)
	}
	return nil
}

func (s *Store) collectionExists(ctx context.Context, collection string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{"name": collection})
	if err != nil {
		return false, store.TransportError("could not list collections", err)
	}
	return len(names) > 0, nil
}
