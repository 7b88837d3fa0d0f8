package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// location_id NULL representa la foto a nivel sede.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, site_id, location_id, quantity, updated_at`

// Get obtiene la foto del alcance; nil si aún no existe.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_quantities
		WHERE product_id = $1 AND site_id = $2 AND location_id IS NOT DISTINCT FROM $3`
	return r.scanOne(ctx, "get stock", query, key)
}

// GetForUpdate obtiene la foto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_quantities
		WHERE product_id = $1 AND site_id = $2 AND location_id IS NOT DISTINCT FROM $3
		FOR UPDATE`
	return r.scanOne(ctx, "get stock for update", query, key)
}

func (r *StockRepo) scanOne(ctx context.Context, op, query string, key entity.StockKey) (*entity.StockSnapshot, error) {
	var s entity.StockSnapshot
	var loc *string
	err := r.q.QueryRow(ctx, query, key.ProductID, key.SiteID, nullable(key.LocationID)).Scan(
		&s.ProductID, &s.SiteID, &loc, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.LocationID = deref(loc)
	return &s, nil
}

// AddDelta suma delta en una sola sentencia (upsert) y devuelve la cantidad resultante.
// Nunca lee y escribe en viajes separados: dos deltas concurrentes se serializan en la fila.
func (r *StockRepo) AddDelta(ctx context.Context, key entity.StockKey, delta decimal.Decimal, floorAtZero bool) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_quantities (product_id, site_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, CASE WHEN $5::boolean THEN GREATEST($4::numeric, 0) ELSE $4::numeric END, now())
		ON CONFLICT ON CONSTRAINT ux_stock_scope
		DO UPDATE SET
			quantity = CASE WHEN $5::boolean
				THEN GREATEST(stock_quantities.quantity + $4::numeric, 0)
				ELSE stock_quantities.quantity + $4::numeric END,
			updated_at = now()
		RETURNING quantity`
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, query, key.ProductID, key.SiteID, nullable(key.LocationID), delta, floorAtZero).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("add stock delta: %w", err)
	}
	return qty, nil
}

// Set reemplaza la cantidad del alcance (reconstrucción desde el libro).
func (r *StockRepo) Set(ctx context.Context, key entity.StockKey, qty decimal.Decimal) error {
	query := `
		INSERT INTO stock_quantities (product_id, site_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT ON CONSTRAINT ux_stock_scope
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, key.ProductID, key.SiteID, nullable(key.LocationID), qty); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// SumSites cantidad global del producto sumando las fotos a nivel sede.
func (r *StockRepo) SumSites(ctx context.Context, productID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_quantities WHERE product_id = $1 AND location_id IS NULL`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum site stock: %w", err)
	}
	return total, nil
}

// ListLocationStock disponible por ubicación de la sede, con la etiqueta para desempate.
func (r *StockRepo) ListLocationStock(ctx context.Context, productID, siteID string) ([]entity.LocationStock, error) {
	query := `
		SELECT s.location_id, l.label, s.quantity
		FROM stock_quantities s
		JOIN locations l ON l.id = s.location_id
		WHERE s.product_id = $1 AND s.site_id = $2 AND s.location_id IS NOT NULL
		ORDER BY l.label, s.location_id`
	rows, err := r.q.Query(ctx, query, productID, siteID)
	if err != nil {
		return nil, fmt.Errorf("list location stock: %w", err)
	}
	defer rows.Close()
	var list []entity.LocationStock
	for rows.Next() {
		var ls entity.LocationStock
		if err := rows.Scan(&ls.LocationID, &ls.Label, &ls.Available); err != nil {
			return nil, fmt.Errorf("scan location stock: %w", err)
		}
		list = append(list, ls)
	}
	return list, rows.Err()
}
