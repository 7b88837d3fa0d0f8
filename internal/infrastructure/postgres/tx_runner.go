package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx inventory.TxScope) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newTxScope(tx)); err != nil {
		if isLockNotAvailable(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txScope repos atados a una pgx.Tx (transacción o savepoint).
type txScope struct {
	tx pgx.Tx
}

func newTxScope(tx pgx.Tx) *txScope { return &txScope{tx: tx} }

func (s *txScope) Movements() repository.MovementRepository { return NewMovementRepository(s.tx) }
func (s *txScope) Stock() repository.StockRepository        { return NewStockRepository(s.tx) }
func (s *txScope) Products() repository.ProductRepository   { return NewProductRepository(s.tx) }
func (s *txScope) CostEvents() repository.ProductCostEventRepository {
	return NewProductCostEventRepository(s.tx)
}

// Savepoint en pgx, Begin sobre una Tx crea un SAVEPOINT; Commit lo libera y Rollback vuelve a él.
func (s *txScope) Savepoint(ctx context.Context, fn func(sp inventory.TxScope) error) error {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	if err := fn(newTxScope(sp)); err != nil {
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
