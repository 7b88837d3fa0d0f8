package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// RecordReceipt registra una entrada. Movimiento y foto se confirman juntos; el recálculo de
// costo corre en un savepoint dentro de la misma transacción con la fila del producto bloqueada,
// de modo que un fallo de costo no deshace el movimiento físico.
// Si el costo falla se devuelve el resultado confirmado junto con un *domain.StepError (cost_update).
func (l *Ledger) RecordReceipt(ctx context.Context, cmd ReceiptCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", cmd.Quantity); err != nil {
		return nil, err
	}
	if err := requireNonNegative("unit_cost", cmd.UnitCost); err != nil {
		return nil, err
	}
	if err := requireNonNegative("tax_rate", cmd.TaxRate); err != nil {
		return nil, err
	}
	usage := cmd.Context
	if usage == "" {
		usage = entity.ContextPurchase
	}
	if !usage.Valid() {
		return nil, domain.NewValidationError("context", "debe ser general, purchase o remission")
	}
	if cmd.PackPrice != nil && (cmd.PackQty == nil || cmd.PackUnit == "") {
		return nil, domain.NewValidationError("pack_qty", "pack_price requiere pack_qty y pack_unit")
	}

	product, err := l.loadProduct(ctx, cmd.CompanyID, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	site, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.LocationID)
	if err != nil {
		return nil, err
	}
	conv, err := l.toStockUnits(ctx, product, cmd.Quantity, cmd.InputUnit, usage)
	if err != nil {
		return nil, err
	}
	if !conv.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "la cantidad convertida a unidad de stock es cero")
	}
	unitCost, hasCost, err := l.stockUnitCost(cmd, product, conv.Factor)
	if err != nil {
		return nil, err
	}

	scope := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.LocationID}
	txID := uuid.New().String()
	mov := l.newMovement(txID, entity.KindReceipt, product.ID, scope, conv.Quantity, cmd.Quantity, cmd.InputUnit, conv, cmd.UserID)
	mov.Reference = cmd.Reference
	mov.Note = cmd.Note
	if hasCost {
		valueAt(mov, unitCost)
	}
	autoCost := product.AutoCost && hasCost

	res := &Result{TransactionID: txID}
	var costErr error
	err = l.tx.Run(ctx, func(tx TxScope) error {
		var locked *entity.Product
		qtyBefore := decimal.Zero
		if autoCost {
			// Bloqueo por producto: un solo recálculo de costo confirma a la vez.
			p, err := tx.Products().GetForUpdate(ctx, product.ID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			locked = p
			if qtyBefore, err = tx.Stock().SumSites(ctx, product.ID); err != nil {
				return err
			}
		}

		if err := appendMovement(ctx, tx, mov); err != nil {
			return err
		}
		snaps, err := l.applyDelta(ctx, tx, product.ID, scope, mov.Quantity, false)
		if err != nil {
			return err
		}
		res.Movements = []*entity.Movement{mov}
		res.Snapshots = snaps

		if autoCost {
			costErr = tx.Savepoint(ctx, func(sp TxScope) error {
				ev, err := l.updateCost(ctx, sp, locked, site, mov, qtyBefore, unitCost, cmd, usage)
				if err != nil {
					return err
				}
				res.CostEvent = ev
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logCommitted("receipt", res)
	if costErr != nil {
		res.CostEvent = nil
		l.log.Error().Err(costErr).
			Str("product_id", product.ID).
			Str("movement_id", mov.ID).
			Str("step", string(domain.StepCostUpdate)).
			Msg("movimiento confirmado sin actualizar el costo")
		return res, domain.StepFailed(domain.StepCostUpdate, costErr)
	}
	return res, nil
}

// stockUnitCost costo por unidad de stock: por precio de empaque o UnitCost / factor.
func (l *Ledger) stockUnitCost(cmd ReceiptCommand, p *entity.Product, factor decimal.Decimal) (decimal.Decimal, bool, error) {
	if cmd.PackPrice != nil {
		c, err := l.converter.ComputeCostPerStockUnit(*cmd.PackPrice, *cmd.PackQty, cmd.PackUnit, p.StockUnit)
		if err != nil {
			return decimal.Zero, false, err
		}
		return c, true, nil
	}
	if cmd.UnitCost == nil {
		return decimal.Zero, false, nil
	}
	if !factor.IsPositive() {
		return decimal.Zero, false, domain.ErrDegenerateConversion
	}
	return cmd.UnitCost.Div(factor).Round(6), true, nil
}

// updateCost paso 5: promedio ponderado, costo del producto y evento de auditoría.
func (l *Ledger) updateCost(ctx context.Context, tx TxScope, p *entity.Product, site *entity.Site,
	mov *entity.Movement, qtyBefore, netCost decimal.Decimal, cmd ReceiptCommand, usage entity.UsageContext,
) (*entity.ProductCostEvent, error) {
	basis := site.CostBasis
	if !basis.Valid() {
		basis = l.basis
	}
	costIn := netCost
	if basis == entity.CostBasisGross {
		rate := p.TaxRate
		if cmd.TaxRate != nil {
			rate = *cmd.TaxRate
		}
		costIn = inventory.GrossCost(netCost, rate)
	}
	costAfter := inventory.WeightedAverageCost(qtyBefore, p.Cost, mov.Quantity, costIn)

	if err := tx.Products().UpdateCost(ctx, p.ID, costAfter); err != nil {
		return nil, err
	}
	source := entity.CostSourceReceipt
	if usage == entity.ContextRemission {
		source = entity.CostSourceRemission
	}
	ev := &entity.ProductCostEvent{
		ID:         uuid.New().String(),
		ProductID:  p.ID,
		SiteID:     mov.SiteID,
		MovementID: mov.ID,
		Source:     source,
		QtyBefore:  qtyBefore,
		QtyIn:      mov.Quantity,
		CostBefore: p.Cost,
		CostIn:     costIn,
		CostAfter:  costAfter,
		Basis:      basis,
		CreatedBy:  mov.CreatedBy,
		CreatedAt:  l.now(),
	}
	if err := tx.CostEvents().Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
