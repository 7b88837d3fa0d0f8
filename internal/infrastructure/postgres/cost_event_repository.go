package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductCostEventRepository = (*ProductCostEventRepo)(nil)

// ProductCostEventRepo auditoría de recálculos de costo sobre PostgreSQL.
type ProductCostEventRepo struct {
	q Querier
}

// NewProductCostEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductCostEventRepository(q Querier) *ProductCostEventRepo {
	return &ProductCostEventRepo{q: q}
}

// Create persiste el evento de costo.
func (r *ProductCostEventRepo) Create(ctx context.Context, ev *entity.ProductCostEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_cost_events (id, product_id, site_id, movement_id, source, qty_before, qty_in,
			cost_before, cost_in, cost_after, basis, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.ProductID, ev.SiteID, ev.MovementID, ev.Source, ev.QtyBefore, ev.QtyIn,
		ev.CostBefore, ev.CostIn, ev.CostAfter, string(ev.Basis), nullable(ev.CreatedBy), ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cost event: %w", err)
	}
	return nil
}

// ListByProduct últimos eventos de costo del producto, el más reciente primero.
func (r *ProductCostEventRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.ProductCostEvent, error) {
	query := `
		SELECT id, product_id, site_id, movement_id, source, qty_before, qty_in,
			cost_before, cost_in, cost_after, basis, created_by, created_at
		FROM product_cost_events WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list cost events: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductCostEvent
	for rows.Next() {
		var ev entity.ProductCostEvent
		var basis string
		var createdBy *string
		if err := rows.Scan(&ev.ID, &ev.ProductID, &ev.SiteID, &ev.MovementID, &ev.Source, &ev.QtyBefore, &ev.QtyIn,
			&ev.CostBefore, &ev.CostIn, &ev.CostAfter, &basis, &createdBy, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cost event: %w", err)
		}
		ev.Basis = entity.CostBasis(basis)
		ev.CreatedBy = deref(createdBy)
		list = append(list, &ev)
	}
	return list, rows.Err()
}
