// Package mongo is the MongoDB Store backend. Bulk field mutations ride
// on $set/$rename/$unset update-many operations; the declared schema is
// the collection's $jsonSchema validator managed through collMod.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docgrid/docgrid/document"
	"github.com/docgrid/docgrid/store"
)

const connectTimeout = 10 * time.Second

// Store implements store.Store against a single MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, store.TransportError("could not connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, store.TransportError("could not reach server", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return store.TransportError("ping failed", err)
	}
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, store.TransportError("could not list collections", err)
	}
	return names, nil
}

func (s *Store) Stats(ctx context.Context, collection string) (store.CollectionStats, error) {
	coll := s.db.Collection(collection)

	estimated, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return store.CollectionStats{}, store.TransportError("could not count documents", err)
	}
	stats := store.CollectionStats{EstimatedCount: estimated}

	// collStats needs extra privileges on some deployments; estimated-only
	// is an acceptable answer when it fails.
	var raw bson.M
	if err := s.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: collection}}).Decode(&raw); err != nil {
		return stats, nil
	}
	if v, ok := asInt64(raw["count"]); ok {
		stats.ExactCount = &v
	}
	if v, ok := asInt64(raw["avgObjSize"]); ok {
		stats.AvgDocumentSize = &v
	}
	if v, ok := asInt64(raw["size"]); ok {
		stats.TotalSize = &v
	}
	if sizes, ok := raw["indexSizes"].(bson.M); ok {
		stats.IndexSizes = make(map[string]int64, len(sizes))
		for name, size := range sizes {
			if v, ok := asInt64(size); ok {
				stats.IndexSizes[name] = v
			}
		}
	}
	return stats, nil
}

func (s *Store) FindPage(ctx context.Context, collection string, page, limit int) (store.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	coll := s.db.Collection(collection)
	skip := int64((page - 1) * limit)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return store.Page{}, store.TransportError("could not count documents", err)
	}

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(int64(limit)))
	if err != nil {
		return store.Page{}, store.TransportError("find failed", err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return store.Page{}, err
	}

	return store.Page{
		Data:    docs,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasNext: int64(page*limit) < total,
		HasPrev: page > 1,
	}, nil
}

func (s *Store) Sample(ctx context.Context, collection string, limit int) ([]document.Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, store.TransportError("find failed", err)
	}
	return decodeAll(ctx, cursor)
}

func (s *Store) Insert(ctx context.Context, collection string, doc document.Document) (document.Document, error) {
	coll := s.db.Collection(collection)

	payload := toBSON(doc)
	res, err := coll.InsertOne(ctx, payload)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ConflictError(document.IDField, "duplicate document id")
		}
		return nil, store.TransportError("insert failed", err)
	}

	var out bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&out); err != nil {
		return nil, store.TransportError("could not read inserted document", err)
	}
	return normalizeDoc(out), nil
}

func (s *Store) UpdateByID(ctx context.Context, collection, id string, fields document.Document) (document.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ValidationError("invalid document id")
	}
	coll := s.db.Collection(collection)

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": toBSON(fields.WithoutID())})
	if err != nil {
		return nil, store.TransportError("update failed", err)
	}
	if res.MatchedCount == 0 {
		return nil, store.NotFoundError("document not found")
	}

	var out bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&out); err != nil {
		return nil, store.TransportError("could not read updated document", err)
	}
	return normalizeDoc(out), nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ValidationError("invalid document id")
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return store.TransportError("delete failed", err)
	}
	if res.DeletedCount == 0 {
		return store.NotFoundError("document not found")
	}
	return nil
}

func (s *Store) HasField(ctx context.Context, collection, field string) (bool, error) {
	err := s.db.Collection(collection).
		FindOne(ctx, bson.M{field: bson.M{"$exists": true}}).
		Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, store.TransportError("existence probe failed", err)
	}
	return true, nil
}

func (s *Store) SetFieldWhereMissing(ctx context.Context, collection, field string, value any) (int64, error) {
	res, err := s.db.Collection(collection).UpdateMany(ctx,
		bson.M{field: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return 0, store.TransportError("bulk set failed", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) RenameField(ctx context.Context, collection, oldName, newName string) (int64, error) {
	res, err := s.db.Collection(collection).UpdateMany(ctx,
		bson.M{oldName: bson.M{"$exists": true}},
		bson.M{"$rename": bson.M{oldName: newName}},
	)
	if err != nil {
		return 0, store.TransportError("bulk rename failed", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) UnsetField(ctx context.Context, collection, field string) (int64, error) {
	res, err := s.db.Collection(collection).UpdateMany(ctx,
		bson.M{field: bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{field: ""}},
	)
	if err != nil {
		return 0, store.TransportError("bulk unset failed", err)
	}
	return res.ModifiedCount, nil
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(x), true
	}
	return 0, false
}
