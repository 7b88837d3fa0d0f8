package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.UomRepository = (*UomRepo)(nil)

// UomRepo lecturas de unidades y perfiles de conversión.
type UomRepo struct {
	pool *pgxpool.Pool
}

// NewUomRepository construye el adaptador.
func NewUomRepository(pool *pgxpool.Pool) *UomRepo {
	return &UomRepo{pool: pool}
}

// ListUnits catálogo completo de unidades (incluye inactivas).
func (r *UomRepo) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	query := `SELECT code, name, family, factor_to_base, symbol, display_digits, active FROM units ORDER BY code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []entity.Unit
	for rows.Next() {
		var u entity.Unit
		var family string
		if err := rows.Scan(&u.Code, &u.Name, &family, &u.FactorToBase, &u.Symbol, &u.DisplayDigits, &u.Active); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.Family = entity.UnitFamily(family)
		list = append(list, u)
	}
	return list, rows.Err()
}

// ListProfiles perfiles de conversión del producto.
func (r *UomRepo) ListProfiles(ctx context.Context, productID string) ([]entity.ProductUomProfile, error) {
	query := `
		SELECT id, product_id, usage_context, input_unit_code, qty_in_input_unit, qty_in_stock_unit,
			is_default, active, source, created_at, updated_at
		FROM product_uom_profiles WHERE product_id = $1`
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list uom profiles: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductUomProfile
	for rows.Next() {
		var p entity.ProductUomProfile
		var usage, source string
		if err := rows.Scan(&p.ID, &p.ProductID, &usage, &p.InputUnitCode, &p.QtyInInputUnit, &p.QtyInStockUnit,
			&p.IsDefault, &p.Active, &source, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan uom profile: %w", err)
		}
		p.Context = entity.UsageContext(usage)
		p.Source = entity.ProfileSource(source)
		list = append(list, p)
	}
	return list, rows.Err()
}
