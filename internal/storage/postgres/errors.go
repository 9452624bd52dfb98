package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
	codeAdminShutdown       = "57P01"
	codeCannotConnectNow    = "57P03"
)

// IsUniqueViolation проверяет нарушение уникального ограничения.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// IsConstraintViolation проверяет нарушение NOT NULL, CHECK или внешнего ключа.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeNotNullViolation, codeCheckViolation, codeForeignKeyViolation:
		return true
	}
	return false
}

// IsConnectionError проверяет, что сервер недоступен, разорвал соединение или не ответил до дедлайна.
func IsConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// класс 08 - connection exception
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == codeAdminShutdown ||
			pgErr.Code == codeCannotConnectNow
	}
	return false
}
