package relational

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Models - модели, из которых строится схема.
func Models() []any {
	return []any{&domain.Customer{}, &domain.Address{}, &domain.Order{}}
}

// AutoMigrate создаёт и обновляет таблицы по моделям.
func AutoMigrate(ctx context.Context, s *Session) error {
	if err := s.DB().WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
