package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// withdrawalKind tipo de salida pedido; consumo por defecto.
func withdrawalKind(s string) entity.MovementKind {
	switch s {
	case "waste":
		return entity.KindWaste
	case "shrink":
		return entity.KindShrink
	}
	return entity.KindConsumption
}

// RecordWithdrawal retira stock de una ubicación. Rechaza antes de escribir si la ubicación no
// alcanza; ubicación y sede quedan con piso en cero.
func (l *Ledger) RecordWithdrawal(ctx context.Context, cmd WithdrawalCommand) (*Result, error) {
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

	scope := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.LocationID}
	txID := uuid.New().String()
	mov := l.newMovement(txID, withdrawalKind(cmd.Kind), product.ID, scope, conv.Quantity.Neg(), cmd.Quantity, cmd.InputUnit, conv, cmd.UserID)
	mov.Reference = cmd.Reference
	mov.Note = cmd.Note
	valueAt(mov, product.Cost)

	res := &Result{TransactionID: txID}
	err = l.tx.Run(ctx, func(tx TxScope) error {
		if err := l.ensureAvailable(ctx, tx, product.ID, scope, conv.Quantity, true); err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, mov); err != nil {
			return err
		}
		snaps, err := l.applyDelta(ctx, tx, product.ID, scope, mov.Quantity, true)
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
	l.logCommitted("withdrawal", res)
	return res, nil
}

// ensureAvailable bloquea la foto del alcance y verifica que alcance para requested.
// Con checkSite también bloquea la foto de sede: si quedó por debajo de la ubicación el piso en
// cero la recortará, y esa diferencia se registra como advertencia para conciliar.
func (l *Ledger) ensureAvailable(ctx context.Context, tx TxScope, productID string, scope entity.Scope, requested decimal.Decimal, checkSite bool) error {
	available, err := lockedQuantity(ctx, tx, entity.StockKey{ProductID: productID, Scope: scope})
	if err != nil {
		return err
	}
	if available.LessThan(requested) {
		return &domain.InsufficientStockError{
			ProductID: productID, SiteID: scope.SiteID, LocationID: scope.LocationID,
			Available: available, Requested: requested,
		}
	}
	if !checkSite || !scope.IsLocation() {
		return nil
	}
	siteQty, err := lockedQuantity(ctx, tx, entity.StockKey{ProductID: productID, Scope: scope.Site()})
	if err != nil {
		return err
	}
	if siteQty.LessThan(requested) {
		l.log.Warn().
			Str("product_id", productID).
			Str("site_id", scope.SiteID).
			Str("location_id", scope.LocationID).
			Str("site_available", siteQty.String()).
			Str("location_available", available.String()).
			Str("requested", requested.String()).
			Str("clipped", requested.Sub(siteQty).String()).
			Msg("foto de sede por debajo de la ubicación; el piso en cero recorta la diferencia")
	}
	return nil
}

func lockedQuantity(ctx context.Context, tx TxScope, key entity.StockKey) (decimal.Decimal, error) {
	snap, err := tx.Stock().GetForUpdate(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if snap == nil {
		return decimal.Zero, nil
	}
	return snap.Quantity, nil
}
