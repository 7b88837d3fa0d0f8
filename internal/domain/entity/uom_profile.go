package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageContext contexto de uso de un perfil de conversión.
type UsageContext string

const (
	ContextGeneral   UsageContext = "general"
	ContextPurchase  UsageContext = "purchase"
	ContextRemission UsageContext = "remission"
)

// Valid indica si el contexto es conocido.
func (c UsageContext) Valid() bool {
	switch c {
	case ContextGeneral, ContextPurchase, ContextRemission:
		return true
	}
	return false
}

// ProfileSource origen del perfil.
type ProfileSource string

const (
	ProfileSourceManual   ProfileSource = "manual"
	ProfileSourceSupplier ProfileSource = "supplier"
)

// ProductUomProfile conversión de negocio (no estricta) de la unidad de captura a la
// unidad de stock de un producto, p. ej. "1 caja = 24 unidades".
// Solo lectura para el núcleo; lo administra el catálogo.
type ProductUomProfile struct {
	ID             string
	ProductID      string
	Context        UsageContext
	InputUnitCode  string
	QtyInInputUnit decimal.Decimal
	QtyInStockUnit decimal.Decimal
	IsDefault      bool
	Active         bool
	Source         ProfileSource
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
