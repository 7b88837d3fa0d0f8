package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SiteRepository = (*SiteRepo)(nil)

// SiteRepo lecturas de sedes, ubicaciones, prioridades y recetas sobre PostgreSQL.
type SiteRepo struct {
	pool *pgxpool.Pool
}

// NewSiteRepository construye el adaptador de solo lectura para sedes.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepo {
	return &SiteRepo{pool: pool}
}

// GetSite obtiene una sede por ID.
func (r *SiteRepo) GetSite(ctx context.Context, id string) (*entity.Site, error) {
	query := `
		SELECT id, company_id, name, cost_basis, created_at, updated_at
		FROM sites WHERE id = $1`
	var s entity.Site
	var basis string
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.CompanyID, &s.Name, &basis, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	s.CostBasis = entity.CostBasis(basis)
	return &s, nil
}

// GetLocation obtiene una ubicación por ID.
func (r *SiteRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT id, site_id, code, label, active FROM locations WHERE id = $1`
	var l entity.Location
	err := r.pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.SiteID, &l.Code, &l.Label, &l.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// ListLocations ubicaciones de la sede (activas e inactivas).
func (r *SiteRepo) ListLocations(ctx context.Context, siteID string) ([]entity.Location, error) {
	query := `SELECT id, site_id, code, label, active FROM locations WHERE site_id = $1 ORDER BY label, id`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.SiteID, &l.Code, &l.Label, &l.Active); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ListPriorities prioridades de extracción configuradas para la sede.
func (r *SiteRepo) ListPriorities(ctx context.Context, siteID string) ([]entity.LocationPriority, error) {
	query := `SELECT location_id, priority, active FROM location_priorities WHERE site_id = $1`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	defer rows.Close()
	var list []entity.LocationPriority
	for rows.Next() {
		var p entity.LocationPriority
		if err := rows.Scan(&p.LocationID, &p.Priority, &p.Active); err != nil {
			return nil, fmt.Errorf("scan priority: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetRecipe obtiene la receta con sus líneas.
func (r *SiteRepo) GetRecipe(ctx context.Context, id string) (*entity.Recipe, error) {
	var rc entity.Recipe
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, yield_qty FROM recipes WHERE id = $1`, id).
		Scan(&rc.ID, &rc.ProductID, &rc.YieldQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT ingredient_id, quantity, active FROM recipe_lines WHERE recipe_id = $1 ORDER BY ingredient_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.RecipeLine
		if err := rows.Scan(&line.IngredientID, &line.Quantity, &line.Active); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		rc.Lines = append(rc.Lines, line)
	}
	return &rc, rows.Err()
}
