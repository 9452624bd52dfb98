package relational

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"gorm.io/gorm"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/storage/postgres"
)

// mapError переводит ошибку gorm/драйвера в domain.PersistenceError.
func mapError(kind domain.Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return domain.NewPersistenceError(classify(err), kind, op, err)
}

func classify(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrorKindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), postgres.IsUniqueViolation(err):
		return domain.ErrorKindConflict
	case errors.Is(err, domain.ErrValidation), postgres.IsConstraintViolation(err):
		return domain.ErrorKindValidation
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		postgres.IsConnectionError(err):
		return domain.ErrorKindStoreUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrorKindStoreUnavailable
	}

	// sqlite отдаёт нарушения ограничений только текстом
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return domain.ErrorKindConflict
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "sql: database is closed"):
		return domain.ErrorKindStoreUnavailable
	}
	return domain.ErrorKindInternal
}
