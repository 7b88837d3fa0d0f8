package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/allocation"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/uom"
	"github.com/shopspring/decimal"
)

// ConsumeBatch descuenta los ingredientes de un lote de producción. Por ingrediente calcula el
// requerimiento, bloquea las fotos de ubicación candidatas, arma el plan por prioridad y, solo si
// todos los planes cubren (o AllowPartial), escribe un movimiento consumption por extracción.
func (l *Ledger) ConsumeBatch(ctx context.Context, cmd ConsumeBatchCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if err := requirePositive("produced_qty", cmd.ProducedQty); err != nil {
		return nil, err
	}
	if _, err := l.loadScope(ctx, cmd.CompanyID, cmd.SiteID, ""); err != nil {
		return nil, err
	}
	recipe, err := l.sites.GetRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, cmd.RecipeID)
	}
	requirements := allocation.ComputeBatchIngredientRequirements(cmd.ProducedQty, recipe.YieldQty, recipe.Lines)
	txID := uuid.New().String()
	res := &Result{TransactionID: txID}
	if len(requirements) == 0 {
		res.Skipped = true
		return res, nil
	}

	ingredients := make(map[string]*entity.Product, len(requirements))
	for _, req := range requirements {
		p, err := l.loadProduct(ctx, cmd.CompanyID, req.IngredientID)
		if err != nil {
			return nil, err
		}
		ingredients[req.IngredientID] = p
	}
	locations, err := l.sites.ListLocations(ctx, cmd.SiteID)
	if err != nil {
		return nil, err
	}
	priorities, err := l.sites.ListPriorities(ctx, cmd.SiteID)
	if err != nil {
		return nil, err
	}
	active := locations[:0:0]
	for _, loc := range locations {
		if loc.Active {
			active = append(active, loc)
		}
	}
	order := allocation.OrderLocations(active, priorities)
	labels := make(map[string]string, len(active))
	for _, loc := range active {
		labels[loc.ID] = loc.Label
	}

	err = l.tx.Run(ctx, func(tx TxScope) error {
		plans := make([]IngredientPlan, 0, len(requirements))
		for _, req := range requirements {
			stocks, err := lockedLocationStock(ctx, tx, req.IngredientID, cmd.SiteID, labels)
			if err != nil {
				return err
			}
			plan := allocation.Allocate(req.RequiredQty, stocks, order)
			if !plan.Satisfied() && !cmd.AllowPartial {
				return &domain.InsufficientStockError{
					ProductID: req.IngredientID, SiteID: cmd.SiteID,
					Available: plan.Total(), Requested: req.RequiredQty,
				}
			}
			plans = append(plans, IngredientPlan{IngredientID: req.IngredientID, Required: req.RequiredQty, Plan: plan})
		}

		identity := decimal.NewFromInt(1)
		for _, ip := range plans {
			product := ingredients[ip.IngredientID]
			for _, draw := range ip.Plan.Draws {
				scope := entity.Scope{SiteID: cmd.SiteID, LocationID: draw.LocationID}
				conv := uom.Conversion{Quantity: draw.Quantity, Factor: identity, Method: uom.MethodIdentity}
				mov := l.newMovement(txID, entity.KindConsumption, product.ID, scope, draw.Quantity.Neg(), draw.Quantity, product.StockUnit, conv, cmd.UserID)
				mov.Reference = cmd.BatchID
				mov.Note = cmd.Note
				valueAt(mov, product.Cost)
				if err := appendMovement(ctx, tx, mov); err != nil {
					return err
				}
				snaps, err := l.applyDelta(ctx, tx, product.ID, scope, mov.Quantity, true)
				if err != nil {
					return err
				}
				res.Movements = append(res.Movements, mov)
				res.Snapshots = append(res.Snapshots, snaps...)
			}
		}
		res.Plans = plans
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logCommitted("production_consume", res)
	return res, nil
}

// lockedLocationStock lee el disponible por ubicación y bloquea cada foto candidata para que
// el plan se arme sobre cantidades que nadie más puede mover hasta el commit.
func lockedLocationStock(ctx context.Context, tx TxScope, productID, siteID string, labels map[string]string) ([]entity.LocationStock, error) {
	listed, err := tx.Stock().ListLocationStock(ctx, productID, siteID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.LocationStock, 0, len(listed))
	for _, s := range listed {
		if _, ok := labels[s.LocationID]; !ok {
			continue
		}
		snap, err := tx.Stock().GetForUpdate(ctx, entity.StockKey{ProductID: productID, Scope: entity.Scope{SiteID: siteID, LocationID: s.LocationID}})
		if err != nil {
			return nil, err
		}
		if snap == nil {
			continue
		}
		out = append(out, entity.LocationStock{LocationID: s.LocationID, Label: labels[s.LocationID], Available: snap.Quantity})
	}
	return out, nil
}

// PlanAllocation vista previa de solo lectura del plan de extracción para un producto.
func (l *Ledger) PlanAllocation(ctx context.Context, companyID, productID, siteID string, required decimal.Decimal) (allocation.Plan, error) {
	if productID == "" {
		return allocation.Plan{}, domain.NewValidationError("product_id", "es obligatorio")
	}
	if siteID == "" {
		return allocation.Plan{}, domain.NewValidationError("site_id", "es obligatorio")
	}
	if _, err := l.loadProduct(ctx, companyID, productID); err != nil {
		return allocation.Plan{}, err
	}
	if _, err := l.loadScope(ctx, companyID, siteID, ""); err != nil {
		return allocation.Plan{}, err
	}
	locations, err := l.sites.ListLocations(ctx, siteID)
	if err != nil {
		return allocation.Plan{}, err
	}
	priorities, err := l.sites.ListPriorities(ctx, siteID)
	if err != nil {
		return allocation.Plan{}, err
	}
	labels := make(map[string]string, len(locations))
	active := locations[:0:0]
	for _, loc := range locations {
		if loc.Active {
			active = append(active, loc)
			labels[loc.ID] = loc.Label
		}
	}
	stocks, err := l.stock.ListLocationStock(ctx, productID, siteID)
	if err != nil {
		return allocation.Plan{}, err
	}
	candidates := stocks[:0:0]
	for _, s := range stocks {
		if label, ok := labels[s.LocationID]; ok {
			s.Label = label
			candidates = append(candidates, s)
		}
	}
	return allocation.Allocate(required, candidates, allocation.OrderLocations(active, priorities)), nil
}
