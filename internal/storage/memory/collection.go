// Package memory - документная коллекция в памяти для локальной разработки и тестов.
package memory

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
)

// collectionInMemory хранит документы в map под RWMutex, сохраняя порядок вставки.
type collectionInMemory struct {
	name  string
	mu    sync.RWMutex
	docs  map[string]document.Document
	order []string
}

// NewCollection возвращает пустую коллекцию.
func NewCollection(name string) document.Collection {
	return &collectionInMemory{
		name: name,
		docs: make(map[string]document.Document),
	}
}

func (c *collectionInMemory) Name() string {
	return c.name
}

// InsertOne сохраняет копию документа. Без _id генерирует uuid.
func (c *collectionInMemory) InsertOne(_ context.Context, doc document.Document) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := c.docs[id]; exists {
		return "", document.ErrDuplicateID
	}

	stored := doc.Clone()
	stored[document.IDField] = id
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

// FindByID возвращает копию документа или ErrNoDocument.
func (c *collectionInMemory) FindByID(_ context.Context, id string) (document.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, document.ErrNoDocument
	}
	return doc.Clone(), nil
}

// FindAll возвращает документы в порядке вставки.
func (c *collectionInMemory) FindAll(_ context.Context) ([]document.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]document.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id].Clone())
	}
	return out, nil
}

// ReplaceByID заменяет документ. Как и Mongo, не считает изменением запись тех же значений.
func (c *collectionInMemory) ReplaceByID(_ context.Context, id string, doc document.Document) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.docs[id]
	if !ok {
		return 0, nil
	}

	replacement := doc.Clone()
	replacement[document.IDField] = id
	if reflect.DeepEqual(current, replacement) {
		return 0, nil
	}
	c.docs[id] = replacement
	return 1, nil
}

// DeleteByID удаляет документ. Отсутствующий id даёт 0.
func (c *collectionInMemory) DeleteByID(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return 1, nil
}

func (c *collectionInMemory) Ping(context.Context) error {
	return nil
}

func (c *collectionInMemory) Close(context.Context) error {
	return nil
}
