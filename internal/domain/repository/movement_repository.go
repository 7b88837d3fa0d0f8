package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementRepository define el puerto del libro de movimientos (solo agrega, nunca actualiza).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// SumForScope suma firmada de los movimientos del producto en el alcance.
	// Un alcance de sede incluye todas sus ubicaciones.
	SumForScope(ctx context.Context, productID string, scope entity.Scope) (decimal.Decimal, error)
}
