package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del inventario (multi-sede).
// Cost es el costo promedio ponderado vigente; solo cambia con recepciones que califican.
type Product struct {
	ID        string
	CompanyID string
	SKU       string
	Name      string
	StockUnit string          // unidad canónica en la que se registra el stock
	Cost      decimal.Decimal // costo promedio ponderado (inicia en 0)
	TaxRate   decimal.Decimal // 0, 0.05, 0.19
	AutoCost  bool            // costo automático desde su canal de abastecimiento principal
	CreatedAt time.Time
	UpdatedAt time.Time
}
