package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto; serializa los recálculos de costo.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
}

// ProductCostEventRepository define el puerto de la auditoría de costos.
type ProductCostEventRepository interface {
	Create(ctx context.Context, event *entity.ProductCostEvent) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.ProductCostEvent, error)
}
