// Package document адаптирует документные хранилища к контракту domain.Repository.
package document

import (
	"context"
	"errors"
	"maps"
)

// IDField - имя поля ключа документа.
const IDField = "_id"

var (
	// ErrNoDocument - документ с таким id отсутствует.
	ErrNoDocument = errors.New("document not found")
	// ErrDuplicateID - документ с таким id уже есть.
	ErrDuplicateID = errors.New("document id already exists")
	// ErrUnavailable - хранилище не ответило или недоступно.
	ErrUnavailable = errors.New("document store unavailable")
)

// Document - документ без схемы, поля один к одному с сущностью.
type Document map[string]any

// ID возвращает строковый ключ документа.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone возвращает поверхностную копию.
func (d Document) Clone() Document {
	return maps.Clone(d)
}

// Collection - одна коллекция документного хранилища.
// Атомарность гарантируется только в пределах одного документа.
type Collection interface {
	Name() string
	// InsertOne сохраняет документ. Пустой _id заполняется хранилищем.
	InsertOne(ctx context.Context, doc Document) (string, error)
	FindByID(ctx context.Context, id string) (Document, error)
	FindAll(ctx context.Context) ([]Document, error)
	// ReplaceByID заменяет документ целиком и возвращает число изменённых.
	ReplaceByID(ctx context.Context, id string, doc Document) (int64, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
