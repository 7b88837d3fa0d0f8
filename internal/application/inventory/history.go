package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

var errHistoryUnavailable = errors.New("historial no configurado")

// ListMovements movimientos del producto, más recientes primero.
func (l *Ledger) ListMovements(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if l.movements == nil {
		return nil, errHistoryUnavailable
	}
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	if _, err := l.loadProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	return l.movements.ListByProduct(ctx, productID, from, to, clampLimit(limit), offset)
}

// ListCostEvents auditoría de costos del producto, más recientes primero.
func (l *Ledger) ListCostEvents(ctx context.Context, companyID, productID string, limit int) ([]*entity.ProductCostEvent, error) {
	if l.costs == nil {
		return nil, errHistoryUnavailable
	}
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if _, err := l.loadProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	return l.costs.ListByProduct(ctx, productID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
