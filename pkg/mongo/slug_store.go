package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

// SlugStore implements sluggable.Store, Finder, Saver and Scanner on top of a
// MongoDB database. Identities that are valid ObjectID hex strings match both
// ObjectID and string values.
type SlugStore struct {
	db *mongo.Database
}

// NewSlugStore creates a store over db.
func NewSlugStore(db *mongo.Database) *SlugStore {
	return &SlugStore{db: db}
}

// MatchSlugs implements sluggable.Store.
func (s *SlugStore) MatchSlugs(ctx context.Context, q sluggable.Query) ([]string, error) {
	coll := s.db.Collection(q.Scope.Collection)

	var (
		cursor *mongo.Cursor
		err    error
	)
	if q.Scope.Strategy == sluggable.StrategyEmbedded {
		cursor, err = coll.Aggregate(ctx, embeddedPipeline(q.Scope, bson.M{
			q.SlugField: bson.M{"$regex": q.Pattern.Expr()},
		}, q.SlugField, q.ExcludeID))
	} else {
		cursor, err = coll.Find(ctx, siblingFilter(q), options.Find().SetProjection(bson.M{q.SlugField: 1}))
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []string
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if v, ok := doc[q.SlugField].(string); ok {
			out = append(out, v)
		}
	}
	return out, cursor.Err()
}

// LookupSlug implements sluggable.Finder.
func (s *SlugStore) LookupSlug(ctx context.Context, l sluggable.Lookup) (string, error) {
	coll := s.db.Collection(l.Scope.Collection)

	if l.Scope.Strategy == sluggable.StrategyEmbedded {
		cursor, err := coll.Aggregate(ctx, embeddedPipeline(l.Scope, bson.M{l.SlugField: l.Slug}, l.SlugField, ""))
		if err != nil {
			return "", err
		}
		defer cursor.Close(ctx)

		if !cursor.Next(ctx) {
			if err := cursor.Err(); err != nil {
				return "", err
			}
			return "", sluggable.ErrNotFound
		}
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return "", err
		}
		return idString(doc["_id"]), nil
	}

	var doc bson.M
	err := coll.FindOne(ctx, lookupFilter(l), options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", sluggable.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return idString(doc["_id"]), nil
}

// Save implements sluggable.Saver for *sluggable.Document values. New
// documents are inserted; existing ones get their changed fields set.
func (s *SlugStore) Save(ctx context.Context, rec sluggable.Record) error {
	doc, ok := rec.(*sluggable.Document)
	if !ok || doc.Collection == "" {
		return errors.Join(sluggable.ErrUnsupportedRecord, fmt.Errorf("%T", rec))
	}
	coll := s.db.Collection(doc.Collection)

	if doc.IsNew() {
		res, err := coll.InsertOne(ctx, bson.M(doc.Fields()))
		if err != nil {
			return err
		}
		doc.MarkPersisted(idString(res.InsertedID))
		return nil
	}

	changes := doc.Changes()
	if len(changes) == 0 {
		return nil
	}
	set := bson.M{}
	for _, name := range changes {
		set[name] = doc.ReadField(name)
	}
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": idMatch(doc.SlugID())}, bson.M{"$set": set}); err != nil {
		return err
	}
	doc.MarkPersisted("")
	return nil
}

// Scan implements sluggable.Scanner over the Spec's collection. Top-level
// ObjectID values are exposed as hex strings so that foreign keys resolve to
// the same identities the store reports.
func (s *SlugStore) Scan(ctx context.Context, spec *sluggable.Spec, fn func(*sluggable.Document) error) error {
	cursor, err := s.db.Collection(spec.Collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return err
		}
		id := idString(raw["_id"])
		delete(raw, "_id")
		for k, v := range raw {
			if oid, ok := v.(bson.ObjectID); ok {
				raw[k] = oid.Hex()
			}
		}

		doc := sluggable.LoadDocument(id, raw)
		doc.Collection = spec.Collection
		if err := fn(doc); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// EnsureSlugIndex creates a unique index on the slug attribute, scoped by the
// association foreign key for association-scoped specs. Combined with
// sluggable.WithConflictRetry and IsDuplicateKeyError it closes the race
// between concurrent generations. Embedded specs are not supported: a unique
// index cannot constrain values within one document's array.
func EnsureSlugIndex(ctx context.Context, db *mongo.Database, spec *sluggable.Spec) (string, error) {
	model, err := slugIndexModel(spec)
	if err != nil {
		return "", err
	}
	return db.Collection(spec.Collection).Indexes().CreateOne(ctx, model)
}

// IsDuplicateKeyError reports whether err is a unique index violation.
func IsDuplicateKeyError(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}

func slugIndexModel(spec *sluggable.Spec) (mongo.IndexModel, error) {
	keys := bson.D{}
	switch spec.Strategy() {
	case sluggable.StrategyEmbedded:
		return mongo.IndexModel{}, sluggable.ErrUnsupportedScope
	case sluggable.StrategyAssociation:
		for _, a := range spec.Associations {
			if a.Name == spec.Scope {
				keys = append(keys, bson.E{Key: a.ForeignKey, Value: 1})
			}
		}
	}
	keys = append(keys, bson.E{Key: spec.SlugField, Value: 1})

	return mongo.IndexModel{
		Keys: keys,
		Options: options.Index().
			SetUnique(true).
			SetName(spec.SlugField + "_unique").
			SetPartialFilterExpression(bson.M{spec.SlugField: bson.M{"$type": "string"}}),
	}, nil
}

func siblingFilter(q sluggable.Query) bson.M {
	filter := bson.M{q.SlugField: bson.M{"$regex": q.Pattern.Expr()}}
	if q.Scope.Strategy == sluggable.StrategyAssociation {
		filter[q.Scope.ParentField] = idMatch(q.Scope.ParentID)
	}
	if q.ExcludeID != "" {
		filter["_id"] = idExclude(q.ExcludeID)
	}
	return filter
}

func lookupFilter(l sluggable.Lookup) bson.M {
	filter := bson.M{l.SlugField: l.Slug}
	if l.Scope.Strategy == sluggable.StrategyAssociation {
		filter[l.Scope.ParentField] = idMatch(l.Scope.ParentID)
	}
	return filter
}

// embeddedPipeline unwinds the parent's array and matches its elements.
func embeddedPipeline(scope sluggable.Scope, match bson.M, slugField, excludeID string) mongo.Pipeline {
	if excludeID != "" {
		match[sluggable.EmbeddedIDField] = idExclude(excludeID)
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": idMatch(scope.ParentID)}}},
		{{Key: "$unwind", Value: "$" + scope.Path}},
		{{Key: "$replaceWith", Value: "$" + scope.Path}},
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{slugField: 1, "_id": 1}}},
	}
}

func idMatch(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{oid, id}}
	}
	return id
}

func idExclude(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"$nin": bson.A{oid, id}}
	}
	return bson.M{"$ne": id}
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
