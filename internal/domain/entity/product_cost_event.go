package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostBasis base de costo de una sede: bruto (con impuesto) o neto.
type CostBasis string

const (
	CostBasisNet   CostBasis = "net"
	CostBasisGross CostBasis = "gross"
)

// Valid indica si la base es conocida.
func (b CostBasis) Valid() bool { return b == CostBasisNet || b == CostBasisGross }

// Orígenes de un cambio de costo.
const (
	CostSourceReceipt   = "receipt"
	CostSourceRemission = "remission"
)

// ProductCostEvent auditoría de cada recálculo de costo de un producto.
// CostAfter siempre es WeightedAverageCost(QtyBefore, CostBefore, QtyIn, CostIn).
type ProductCostEvent struct {
	ID         string
	ProductID  string
	SiteID     string
	MovementID string
	Source     string
	QtyBefore  decimal.Decimal
	QtyIn      decimal.Decimal
	CostBefore decimal.Decimal
	CostIn     decimal.Decimal
	CostAfter  decimal.Decimal
	Basis      CostBasis
	CreatedBy  string
	CreatedAt  time.Time
}
