package domain

import (
	"errors"
	"fmt"
)

// ErrorKind классифицирует ошибки слоя хранения.
type ErrorKind string

const (
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindConflict         ErrorKind = "conflict"
	ErrorKindStoreUnavailable ErrorKind = "store_unavailable"
	ErrorKindPoolExhausted    ErrorKind = "pool_exhausted"
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindInternal         ErrorKind = "internal"
)

var (
	// ErrNotFound - сущность с таким ключом отсутствует.
	ErrNotFound = errors.New("entity not found")
	// ErrConflict - нарушено ограничение уникальности.
	ErrConflict = errors.New("entity conflict")
	// ErrStoreUnavailable - хранилище недоступно или не ответило вовремя.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrPoolExhausted - в пуле идентификаторов заказов не осталось значений.
	ErrPoolExhausted = errors.New("order id pool exhausted")
	// ErrValidation - сущность нарушает структурные инварианты.
	ErrValidation = errors.New("entity validation failed")
	// ErrInternal - прочие сбои хранилища.
	ErrInternal = errors.New("persistence failure")
	// ErrKindNotRegistered - для типа сущности не зарегистрирован движок.
	ErrKindNotRegistered = errors.New("entity kind not registered")

	// Ошибка отсутствующего адреса у клиента.
	ErrCustomerAddressRequired = errors.New("customer address is required")
	// Ошибка пустого имени клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка пустой улицы.
	ErrAddressStreetRequired = errors.New("address street is required")
	// Ошибка пустого города.
	ErrAddressCityRequired = errors.New("address city is required")
	// Ошибка адреса без владельца.
	ErrAddressOwnerRequired = errors.New("address customer_id is required")
	// Ошибка пустого названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrProductQuantityNegative = errors.New("product quantity must be non-negative")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отрицательной суммы заказа.
	ErrOrderTotalNegative = errors.New("order total must be non-negative")
	// ErrComputerDetached - у заказа нет агрегата цены для пересчёта.
	ErrComputerDetached = errors.New("order has no attached computer")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindNotFound:         ErrNotFound,
	ErrorKindConflict:         ErrConflict,
	ErrorKindStoreUnavailable: ErrStoreUnavailable,
	ErrorKindPoolExhausted:    ErrPoolExhausted,
	ErrorKindValidation:       ErrValidation,
	ErrorKindInternal:         ErrInternal,
}

// PersistenceError - типизированная ошибка операции хранилища.
// Unwrap отдаёт исходную причину, errors.Is сравнивает с sentinel своего вида.
type PersistenceError struct {
	Kind   ErrorKind
	Op     string
	Entity Kind
	Err    error
}

// NewPersistenceError оборачивает причину. Для nil возвращает nil.
func NewPersistenceError(kind ErrorKind, entity Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Kind: kind, Op: op, Entity: entity, Err: err}
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Entity, e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с sentinel её вида.
func (e *PersistenceError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf определяет вид ошибки. Для ошибок вне таксономии возвращает internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	for _, kind := range []ErrorKind{
		ErrorKindNotFound,
		ErrorKindConflict,
		ErrorKindStoreUnavailable,
		ErrorKindPoolExhausted,
		ErrorKindValidation,
	} {
		if errors.Is(err, kindSentinels[kind]) {
			return kind
		}
	}
	return ErrorKindInternal
}

// IsNotFound проверяет, что сущность не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict проверяет нарушение уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsStoreUnavailable проверяет недоступность хранилища.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
