package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// UomRepository lecturas de configuración de unidades (administrada fuera del núcleo).
type UomRepository interface {
	ListUnits(ctx context.Context) ([]entity.Unit, error)
	ListProfiles(ctx context.Context, productID string) ([]entity.ProductUomProfile, error)
}
