// Package redis - документная коллекция в Redis: JSON-документ на ключ и индекс id.
package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
)

const defaultDialTimeout = 5 * time.Second

// Config описывает подключение к Redis.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Collection  string
	DialTimeout time.Duration
}

// Collection хранит документ под ключом <name>:doc:<id>,
// а множество <name>:ids служит индексом для FindAll.
type Collection struct {
	rdb  goredis.UniversalClient
	name string
}

var _ document.Collection = (*Collection)(nil)

// Open подключается к Redis и проверяет доступность.
func Open(ctx context.Context, cfg Config) (*Collection, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return New(rdb, cfg.Collection), nil
}

// New оборачивает готовый клиент.
func New(rdb goredis.UniversalClient, name string) *Collection {
	return &Collection{rdb: rdb, name: name}
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) docKey(id string) string {
	return c.name + ":doc:" + id
}

func (c *Collection) indexKey() string {
	return c.name + ":ids"
}

// InsertOne атомарно проверяет отсутствие ключа и пишет документ вместе с индексом.
func (c *Collection) InsertOne(ctx context.Context, doc document.Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored := doc.Clone()
	stored[document.IDField] = id
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	key := c.docKey(id)
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return document.ErrDuplicateID
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.SAdd(ctx, c.indexKey(), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (document.Document, error) {
	raw, err := c.rdb.Get(ctx, c.docKey(id)).Bytes()
	if err != nil {
		return nil, mapError(err)
	}
	return decode(raw)
}

func (c *Collection) FindAll(ctx context.Context) ([]document.Document, error) {
	ids, err := c.rdb.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		return nil, mapError(err)
	}
	if len(ids) == 0 {
		return []document.Document{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.docKey(id))
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]document.Document, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// документ удалён между SMEMBERS и MGET
			continue
		}
		doc, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// ReplaceByID заменяет документ под WATCH. Совпадающее содержимое не считается изменением.
func (c *Collection) ReplaceByID(ctx context.Context, id string, doc document.Document) (int64, error) {
	replacement := doc.Clone()
	replacement[document.IDField] = id
	raw, err := json.Marshal(replacement)
	if err != nil {
		return 0, fmt.Errorf("encode document: %w", err)
	}

	key := c.docKey(id)
	var modified int64
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if bytes.Equal(current, raw) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			modified = 1
		}
		return err
	}, key)
	if err != nil {
		return 0, mapError(err)
	}
	return modified, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (int64, error) {
	var del *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, c.docKey(id))
		pipe.SRem(ctx, c.indexKey(), id)
		return nil
	})
	if err != nil {
		return 0, mapError(err)
	}
	return del.Val(), nil
}

func (c *Collection) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Collection) Close(context.Context) error {
	return c.rdb.Close()
}

// decode сохраняет числа как json.Number, чтобы не терять целые.
func decode(raw []byte) (document.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc document.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func mapError(err error) error {
	if errors.Is(err, goredis.Nil) {
		return document.ErrNoDocument
	}
	if errors.Is(err, document.ErrDuplicateID) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, goredis.ErrClosed) ||
		errors.Is(err, goredis.TxFailedErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(document.ErrUnavailable, err)
	}
	return err
}
