package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RebuildSnapshot recalcula la foto de un alcance como la suma de sus movimientos.
// El libro es la fuente de verdad; se usa para recuperar fotos que quedaron rezagadas.
func (l *Ledger) RebuildSnapshot(ctx context.Context, cmd RebuildCommand) (*entity.StockSnapshot, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if _, err := l.loadProduct(ctx, cmd.CompanyID, cmd.ProductID); err != nil {
		return nil, err
	}
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, cmd.LocationID); err != nil {
		return nil, err
	}
	scope := entity.Scope{SiteID: cmd.SiteID, LocationID: cmd.LocationID}
	key := entity.StockKey{ProductID: cmd.ProductID, Scope: scope}
	var snap *entity.StockSnapshot
	err := l.tx.Run(ctx, func(tx TxScope) error {
		// Bloquea la foto para que ningún delta concurrente se pierda entre la suma y el reemplazo.
		if _, err := tx.Stock().GetForUpdate(ctx, key); err != nil {
			return err
		}
		sum, err := tx.Movements().SumForScope(ctx, cmd.ProductID, scope)
		if err != nil {
			return err
		}
		if err := tx.Stock().Set(ctx, key, sum); err != nil {
			return stepSnapshot(err)
		}
		snap = &entity.StockSnapshot{
			ProductID: cmd.ProductID, SiteID: scope.SiteID, LocationID: scope.LocationID, Quantity: sum, UpdatedAt: l.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("product_id", cmd.ProductID).
		Str("site_id", cmd.SiteID).
		Str("location_id", cmd.LocationID).
		Str("quantity", snap.Quantity.String()).
		Str("user_id", cmd.UserID).
		Msg("foto de cantidad reconstruida")
	return snap, nil
}
