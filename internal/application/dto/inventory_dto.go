package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReceiptRequest body para POST /api/inventory/receipts.
// unit_cost es por unidad de captura; alternativamente pack_price + pack_qty + pack_unit.
type ReceiptRequest struct {
	ProductID  string           `json:"product_id"`
	SiteID     string           `json:"site_id"`
	LocationID string           `json:"location_id,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity"`
	InputUnit  string           `json:"input_unit,omitempty"`
	Context    string           `json:"context,omitempty"` // general | purchase | remission
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	PackPrice  *decimal.Decimal `json:"pack_price,omitempty"`
	PackQty    *decimal.Decimal `json:"pack_qty,omitempty"`
	PackUnit   string           `json:"pack_unit,omitempty"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Reference  string           `json:"reference,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	ProductID  string          `json:"product_id"`
	SiteID     string          `json:"site_id"`
	LocationID string          `json:"location_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	InputUnit  string          `json:"input_unit,omitempty"`
	Direction  string          `json:"direction"` // increase | decrease
	Reason     string          `json:"reason"`
}

// CountRequest body para POST /api/inventory/counts. counted_quantity es lo contado.
type CountRequest struct {
	ProductID       string          `json:"product_id"`
	SiteID          string          `json:"site_id"`
	LocationID      string          `json:"location_id,omitempty"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	InputUnit       string          `json:"input_unit,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// WithdrawalRequest body para POST /api/inventory/withdrawals.
type WithdrawalRequest struct {
	ProductID  string          `json:"product_id"`
	SiteID     string          `json:"site_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	InputUnit  string          `json:"input_unit,omitempty"`
	Kind       string          `json:"kind,omitempty"` // consumption | waste | shrink
	Reference  string          `json:"reference,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers (misma sede).
type TransferRequest struct {
	ProductID      string          `json:"product_id"`
	SiteID         string          `json:"site_id"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	InputUnit      string          `json:"input_unit,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// ConsumeBatchRequest body para POST /api/inventory/production/consume.
type ConsumeBatchRequest struct {
	SiteID       string          `json:"site_id"`
	RecipeID     string          `json:"recipe_id"`
	BatchID      string          `json:"batch_id"`
	ProducedQty  decimal.Decimal `json:"produced_qty"`
	AllowPartial bool            `json:"allow_partial,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// RebuildRequest body para POST /api/inventory/snapshots/rebuild.
type RebuildRequest struct {
	ProductID  string `json:"product_id"`
	SiteID     string `json:"site_id"`
	LocationID string `json:"location_id,omitempty"`
}

// MovementDTO movimiento del libro.
type MovementDTO struct {
	ID               string           `json:"id"`
	Sequence         int64            `json:"sequence"`
	TransactionID    string           `json:"transaction_id"`
	ProductID        string           `json:"product_id"`
	SiteID           string           `json:"site_id"`
	LocationID       string           `json:"location_id,omitempty"`
	Kind             string           `json:"kind"`
	Quantity         decimal.Decimal  `json:"quantity"`
	InputQuantity    *decimal.Decimal `json:"input_quantity,omitempty"`
	InputUnit        string           `json:"input_unit,omitempty"`
	ConversionFactor decimal.Decimal  `json:"conversion_factor"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost        *decimal.Decimal `json:"total_cost,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	Note             string           `json:"note,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// SnapshotDTO foto de cantidad tras la acción.
type SnapshotDTO struct {
	ProductID  string          `json:"product_id"`
	SiteID     string          `json:"site_id"`
	LocationID string          `json:"location_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// CostEventDTO auditoría de un recálculo de costo.
type CostEventDTO struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	SiteID     string          `json:"site_id"`
	MovementID string          `json:"movement_id"`
	Source     string          `json:"source"`
	QtyBefore  decimal.Decimal `json:"qty_before"`
	QtyIn      decimal.Decimal `json:"qty_in"`
	CostBefore decimal.Decimal `json:"cost_before"`
	CostIn     decimal.Decimal `json:"cost_in"`
	CostAfter  decimal.Decimal `json:"cost_after"`
	Basis      string          `json:"basis"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DrawDTO extracción de una ubicación.
type DrawDTO struct {
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// AllocationPlanDTO plan de extracción.
type AllocationPlanDTO struct {
	IngredientID string          `json:"ingredient_id,omitempty"`
	Required     decimal.Decimal `json:"required"`
	Draws        []DrawDTO       `json:"draws"`
	Missing      decimal.Decimal `json:"missing"`
	Satisfied    bool            `json:"satisfied"`
}

// LedgerResultDTO respuesta de una acción del libro. Warning viene con 207 cuando el movimiento
// quedó confirmado pero un paso posterior (costo) falló.
type LedgerResultDTO struct {
	TransactionID string              `json:"transaction_id"`
	Skipped       bool                `json:"skipped,omitempty"`
	Movements     []MovementDTO       `json:"movements"`
	Snapshots     []SnapshotDTO       `json:"snapshots"`
	CostEvent     *CostEventDTO       `json:"cost_event,omitempty"`
	Plans         []AllocationPlanDTO `json:"plans,omitempty"`
	Warning       *ErrorResponse      `json:"warning,omitempty"`
}

// ToMovementDTO mapea la entidad a su DTO.
func ToMovementDTO(m *entity.Movement) MovementDTO {
	return MovementDTO{
		ID:               m.ID,
		Sequence:         m.Sequence,
		TransactionID:    m.TransactionID,
		ProductID:        m.ProductID,
		SiteID:           m.SiteID,
		LocationID:       m.LocationID,
		Kind:             m.Kind.String(),
		Quantity:         m.Quantity,
		InputQuantity:    m.InputQuantity,
		InputUnit:        m.InputUnit,
		ConversionFactor: m.ConversionFactor,
		UnitCost:         m.UnitCost,
		TotalCost:        m.TotalCost,
		Reference:        m.Reference,
		Note:             m.Note,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

// ToSnapshotDTO mapea la foto a su DTO.
func ToSnapshotDTO(s entity.StockSnapshot) SnapshotDTO {
	return SnapshotDTO{ProductID: s.ProductID, SiteID: s.SiteID, LocationID: s.LocationID, Quantity: s.Quantity}
}

// ToCostEventDTO mapea el evento de costo a su DTO.
func ToCostEventDTO(ev *entity.ProductCostEvent) *CostEventDTO {
	if ev == nil {
		return nil
	}
	return &CostEventDTO{
		ID:         ev.ID,
		ProductID:  ev.ProductID,
		SiteID:     ev.SiteID,
		MovementID: ev.MovementID,
		Source:     ev.Source,
		QtyBefore:  ev.QtyBefore,
		QtyIn:      ev.QtyIn,
		CostBefore: ev.CostBefore,
		CostIn:     ev.CostIn,
		CostAfter:  ev.CostAfter,
		Basis:      string(ev.Basis),
		CreatedAt:  ev.CreatedAt,
	}
}
