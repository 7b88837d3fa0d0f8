package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxScope repositorios atados a una transacción de BD.
type TxScope interface {
	Movements() repository.MovementRepository
	Stock() repository.StockRepository
	Products() repository.ProductRepository
	CostEvents() repository.ProductCostEventRepository
	// Savepoint ejecuta fn en una sub-transacción: si fn falla solo se deshace lo hecho en fn
	// y la transacción externa sigue viva.
	Savepoint(ctx context.Context, fn func(sp TxScope) error) error
}

// TxRunner ejecuta una función dentro de una transacción de BD y hace Commit o Rollback.
// Garantiza que movimiento y foto de cantidad se escriban juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx TxScope) error) error
}

// SequenceGenerator genera el orden monotónico de los movimientos del libro.
type SequenceGenerator interface {
	Next() int64
}
