package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RecordTransfer traslada entre ubicaciones de una misma sede: transfer_out en origen y
// transfer_in en destino con el mismo TransactionID. La foto de sede no cambia porque el neto es cero.
func (l *Ledger) RecordTransfer(ctx context.Context, cmd TransferCommand) (*Result, error) {
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
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.FromLocationID); err != nil {
		return nil, err
	}
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.ToLocationID); err != nil {
		return nil, err
	}
	conv, err := l.toStockUnits(ctx, product, cmd.Quantity, cmd.InputUnit, entity.ContextGeneral)
	if err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", conv.Quantity); err != nil {
		return nil, err
	}

	from := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.FromLocationID}
	to := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.ToLocationID}
	txID := uuid.New().String()
	out := l.newMovement(txID, entity.KindTransferOut, product.ID, from, conv.Quantity.Neg(), cmd.Quantity, cmd.InputUnit, conv, cmd.UserID)
	in := l.newMovement(txID, entity.KindTransferIn, product.ID, to, conv.Quantity, cmd.Quantity, cmd.InputUnit, conv, cmd.UserID)
	out.Note, in.Note = cmd.Note, cmd.Note
	valueAt(out, product.Cost)
	valueAt(in, product.Cost)

	res := &Result{TransactionID: txID}
	err = l.tx.Run(ctx, func(tx TxScope) error {
		// En la sede el traslado suma cero; solo importa la ubicación de origen.
		if err := l.ensureAvailable(ctx, tx, product.ID, from, conv.Quantity, false); err != nil {
			return err
		}
		for _, m := range []*entity.Movement{out, in} {
			if err := appendMovement(ctx, tx, m); err != nil {
				return err
			}
		}
		// Solo fotos de ubicación: en la sede el traslado suma cero.
		originQty, err := tx.Stock().AddDelta(ctx, entity.StockKey{ProductID: product.ID, Scope: from}, out.Quantity, true)
		if err != nil {
			return stepSnapshot(err)
		}
		destQty, err := tx.Stock().AddDelta(ctx, entity.StockKey{ProductID: product.ID, Scope: to}, in.Quantity, false)
		if err != nil {
			return stepSnapshot(err)
		}
		now := l.now()
		res.Movements = []*entity.Movement{out, in}
		res.Snapshots = []entity.StockSnapshot{
			{ProductID: product.ID, SiteID: from.SiteID, LocationID: from.LocationID, Quantity: originQty, UpdatedAt: now},
			{ProductID: product.ID, SiteID: to.SiteID, LocationID: to.LocationID, Quantity: destQty, UpdatedAt: now},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logCommitted("transfer", res)
	return res, nil
}
