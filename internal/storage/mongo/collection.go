// Package mongo - документная коллекция на официальном драйвере MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
)

const defaultConnectTimeout = 5 * time.Second

// Config описывает подключение к MongoDB.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Collection реализует document.Collection поверх коллекции MongoDB.
// Ключи - ObjectID, наружу отдаются в hex-виде.
type Collection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ document.Collection = (*Collection)(nil)

// Open подключается к MongoDB и проверяет доступность primary.
func Open(ctx context.Context, cfg Config) (*Collection, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return New(client, cfg.Database, cfg.Collection), nil
}

// New оборачивает готовый клиент.
func New(client *mongo.Client, database, collection string) *Collection {
	return &Collection{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (c *Collection) Name() string {
	return c.coll.Name()
}

func (c *Collection) InsertOne(ctx context.Context, doc document.Document) (string, error) {
	res, err := c.coll.InsertOne(ctx, toBSON(doc, true))
	if err != nil {
		return "", mapError(err)
	}
	return idString(res.InsertedID), nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (document.Document, error) {
	var raw bson.M
	if err := c.coll.FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&raw); err != nil {
		return nil, mapError(err)
	}
	return fromBSON(raw), nil
}

func (c *Collection) FindAll(ctx context.Context) ([]document.Document, error) {
	cur, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mapError(err)
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, mapError(err)
	}

	out := make([]document.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, fromBSON(raw))
	}
	return out, nil
}

// ReplaceByID возвращает ModifiedCount: запись тех же значений даёт 0.
func (c *Collection) ReplaceByID(ctx context.Context, id string, doc document.Document) (int64, error) {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": idValue(id)}, toBSON(doc, false))
	if err != nil {
		return 0, mapError(err)
	}
	return res.ModifiedCount, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": idValue(id)})
	if err != nil {
		return 0, mapError(err)
	}
	return res.DeletedCount, nil
}

func (c *Collection) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Collection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// toBSON переводит документ в bson.M. hex-строка в _id становится ObjectID.
func toBSON(doc document.Document, withID bool) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == document.IDField {
			if !withID {
				continue
			}
			if id, ok := v.(string); ok {
				out[k] = idValue(id)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func fromBSON(raw bson.M) document.Document {
	out := make(document.Document, len(raw))
	for k, v := range raw {
		if k == document.IDField {
			out[k] = idString(v)
			continue
		}
		out[k] = v
	}
	return out
}

func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return document.ErrNoDocument
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(document.ErrDuplicateID, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return errors.Join(document.ErrUnavailable, err)
	}
	return err
}
