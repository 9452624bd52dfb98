package domain

import (
	"context"
	"errors"
	"time"
)

// Repository - единый контракт хранения сущности V с ключом K.
type Repository[K comparable, V any] interface {
	// Create сохраняет сущность и возвращает её с заполненным ключом.
	Create(ctx context.Context, v V) (V, error)
	// ReadAll возвращает все сущности данного типа.
	ReadAll(ctx context.Context) ([]V, error)
	// Read возвращает сущность по ключу или ошибку вида not_found.
	Read(ctx context.Context, k K) (V, error)
	// Update полностью заменяет сущность с ключом v. Возвращает число затронутых записей.
	Update(ctx context.Context, v V) (int64, error)
	// Delete удаляет сущность. Отсутствующий ключ даёт 0 без ошибки.
	Delete(ctx context.Context, k K) (int64, error)
}

// Normalizer приводит сущность к канонической форме перед записью.
type Normalizer interface {
	Normalize()
}

// Validator проверяет структурные инварианты сущности.
type Validator interface {
	Validate() error
}

// StorageObserver получает сведения о каждой операции хранилища.
type StorageObserver interface {
	ObserveOperation(kind Kind, op string, err error, elapsed time.Duration)
}

// NoopObserver ничего не делает.
type NoopObserver struct{}

// ObserveOperation реализует StorageObserver.
func (NoopObserver) ObserveOperation(Kind, string, error, time.Duration) {}

// Prepare нормализует и валидирует сущность перед записью.
// Ошибка валидации матчится и с ErrValidation, и с конкретной причиной.
func Prepare(v any) error {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}
	val, ok := v.(Validator)
	if !ok {
		return nil
	}
	if err := val.Validate(); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}
