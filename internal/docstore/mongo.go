package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(32)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(database), nil
}

// Mongo maps each logical collection to a Mongo collection; _id is the document id.
type Mongo struct{ DB *mongo.Database }

func (m *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	cur, err := m.DB.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var out []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := m.DB.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (m *Mongo) Add(ctx context.Context, collection string, data any) (string, error) {
	doc, err := toBSON(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc["_id"] = id
	if _, err := m.DB.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return id, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, data any) error {
	doc, err := toBSON(data)
	if err != nil {
		return err
	}
	doc["_id"] = id
	opts := options.Replace().SetUpsert(true)
	if _, err := m.DB.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fieldsIn map[string]any) error {
	set, err := toBSON(fieldsIn)
	if err != nil {
		return err
	}
	delete(set, "_id")
	res, err := m.DB.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	res, err := m.DB.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// idFilter also matches documents written by other tools with ObjectID keys.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func fromBSON(raw bson.M) Document {
	var id string
	switch v := raw["_id"].(type) {
	case string:
		id = v
	case primitive.ObjectID:
		id = v.Hex()
	default:
		id = fmt.Sprint(v)
	}
	delete(raw, "_id")
	return Document{ID: id, Data: map[string]any(raw)}
}

// toBSON goes through JSON so struct tags stay the single source of field names.
func toBSON(data any) (bson.M, error) {
	b, err := fields(data)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
