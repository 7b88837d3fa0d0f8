package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SiteRepository lecturas de sedes, ubicaciones, prioridades y recetas.
type SiteRepository interface {
	GetSite(ctx context.Context, id string) (*entity.Site, error)
	GetLocation(ctx context.Context, id string) (*entity.Location, error)
	ListLocations(ctx context.Context, siteID string) ([]entity.Location, error)
	ListPriorities(ctx context.Context, siteID string) ([]entity.LocationPriority, error)
	GetRecipe(ctx context.Context, id string) (*entity.Recipe, error)
}
