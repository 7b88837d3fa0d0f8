package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto para las fotos de cantidad por producto y alcance.
// Usado dentro de transacciones; toda mutación es un delta atómico, nunca leer-y-escribir.
type StockRepository interface {
	// Get devuelve la foto o nil si aún no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error)
	// AddDelta aplica quantity = quantity + delta en una sola escritura y devuelve el nuevo valor.
	// Con floorAtZero el resultado nunca baja de cero.
	AddDelta(ctx context.Context, key entity.StockKey, delta decimal.Decimal, floorAtZero bool) (decimal.Decimal, error)
	// Set reemplaza la cantidad (solo para reconstrucción desde el libro).
	Set(ctx context.Context, key entity.StockKey, qty decimal.Decimal) error
	// SumSites cantidad global del producto: suma de las fotos a nivel sede.
	SumSites(ctx context.Context, productID string) (decimal.Decimal, error)
	// ListLocationStock disponible del producto por ubicación dentro de una sede.
	ListLocationStock(ctx context.Context, productID, siteID string) ([]entity.LocationStock, error)
}
