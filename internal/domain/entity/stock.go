package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scope granularidad de seguimiento: una sede completa o una ubicación dentro de ella.
// LocationID vacío = nivel sede.
type Scope struct {
	SiteID     string
	LocationID string
}

// SiteScope alcance a nivel sede.
func SiteScope(siteID string) Scope { return Scope{SiteID: siteID} }

// IsLocation indica si el alcance es una ubicación física.
func (s Scope) IsLocation() bool { return s.LocationID != "" }

// Site devuelve el alcance de sede que contiene a s.
func (s Scope) Site() Scope { return Scope{SiteID: s.SiteID} }

// StockKey clave de una foto de cantidad.
type StockKey struct {
	ProductID string
	Scope
}

// StockSnapshot cantidad actual de un producto en un alcance (tabla materializada).
// Se mantiene con deltas atómicos desde el libro de movimientos; puede reconstruirse sumándolos.
type StockSnapshot struct {
	ProductID  string
	SiteID     string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}

// Key devuelve la clave de la foto.
func (s StockSnapshot) Key() StockKey {
	return StockKey{ProductID: s.ProductID, Scope: Scope{SiteID: s.SiteID, LocationID: s.LocationID}}
}

// LocationStock disponible de un producto en una ubicación, con datos para desempate.
type LocationStock struct {
	LocationID string
	Label      string
	Available  decimal.Decimal
}
