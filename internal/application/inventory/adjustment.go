package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RecordAdjustment ajuste manual con motivo. No tiene piso en cero: un sobreajuste queda
// visible como cantidad negativa en vez de ocultarse.
func (l *Ledger) RecordAdjustment(ctx context.Context, cmd AdjustmentCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", cmd.Quantity); err != nil {
		return nil, err
	}
	product, err := l.loadProduct(ctx, cmd.CompanyID, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.LocationID); err != nil {
		return nil, err
	}
	conv, err := l.toStockUnits(ctx, product, cmd.Quantity, cmd.InputUnit, entity.ContextGeneral)
	if err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", conv.Quantity); err != nil {
		return nil, err
	}
	delta := conv.Quantity
	if cmd.Direction == DirectionDecrease {
		delta = delta.Neg()
	}

	scope := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.LocationID}
	txID := uuid.New().String()
	mov := l.newMovement(txID, entity.KindAdjustment, product.ID, scope, delta, cmd.Quantity, cmd.InputUnit, conv, cmd.UserID)
	mov.Note = cmd.Reason
	valueAt(mov, product.Cost)

	res := &Result{TransactionID: txID}
	err = l.tx.Run(ctx, func(tx TxScope) error {
		if err := appendMovement(ctx, tx, mov); err != nil {
			return err
		}
		snaps, err := l.applyDelta(ctx, tx, product.ID, scope, delta, false)
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
	l.logCommitted("adjustment", res)
	return res, nil
}
