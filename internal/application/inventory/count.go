package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecordCount aprueba un conteo físico: registra la diferencia contra la foto bloqueada.
// El primer conteo de un alcance sin foto es initial_count. Con piso en cero.
// Si lo contado coincide con la foto no se escribe nada y el resultado queda Skipped.
func (l *Ledger) RecordCount(ctx context.Context, cmd CountCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if cmd.CountedQuantity.IsNegative() {
		return nil, domain.NewValidationError("counted_quantity", "no puede ser negativo")
	}
	product, err := l.loadProduct(ctx, cmd.CompanyID, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.LocationID); err != nil {
		return nil, err
	}
	conv, err := l.toStockUnits(ctx, product, cmd.CountedQuantity, cmd.InputUnit, entity.ContextGeneral)
	if err != nil {
		return nil, err
	}

	scope := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.LocationID}
	key := entity.StockKey{ProductID: product.ID, Scope: scope}
	txID := uuid.New().String()
	res := &Result{TransactionID: txID}

	err = l.tx.Run(ctx, func(tx TxScope) error {
		snap, err := tx.Stock().GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		kind := entity.KindCount
		current := decimal.Zero
		if snap == nil {
			kind = entity.KindInitialCount
		} else {
			current = snap.Quantity
		}
		delta := conv.Quantity.Sub(current).Round(6)
		if delta.IsZero() {
			res.Skipped = true
			res.Snapshots = []entity.StockSnapshot{{
				ProductID: product.ID, SiteID: scope.SiteID, LocationID: scope.LocationID, Quantity: current, UpdatedAt: l.now(),
			}}
			return nil
		}

		mov := l.newMovement(txID, kind, product.ID, scope, delta, cmd.CountedQuantity, cmd.InputUnit, conv, cmd.UserID)
		mov.Note = cmd.Note
		valueAt(mov, product.Cost)
		if err := appendMovement(ctx, tx, mov); err != nil {
			return err
		}
		snaps, err := l.applyDelta(ctx, tx, product.ID, scope, delta, true)
		if err != nil {
			return err
		}
		res.Movements = []*entity.Movement{mov}
		res.Snapshots = snaps
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logCommitted("count", res)
	return res, nil
}
