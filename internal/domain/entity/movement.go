package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo cerrado de movimiento. Agregar un tipo obliga a revisar cada switch exhaustivo.
type MovementKind uint8

const (
	KindUnknown MovementKind = iota
	KindReceipt
	KindAdjustment
	KindConsumption
	KindCount
	KindInitialCount
	KindTransferIn
	KindTransferOut
	KindWaste
	KindShrink
)

// MovementKinds todos los tipos válidos, en orden de declaración.
var MovementKinds = []MovementKind{
	KindReceipt, KindAdjustment, KindConsumption, KindCount, KindInitialCount,
	KindTransferIn, KindTransferOut, KindWaste, KindShrink,
}

// String devuelve el código persistido del tipo.
func (k MovementKind) String() string {
	switch k {
	case KindReceipt:
		return "receipt"
	case KindAdjustment:
		return "adjustment"
	case KindConsumption:
		return "consumption"
	case KindCount:
		return "count"
	case KindInitialCount:
		return "initial_count"
	case KindTransferIn:
		return "transfer_in"
	case KindTransferOut:
		return "transfer_out"
	case KindWaste:
		return "waste"
	case KindShrink:
		return "shrink"
	}
	return "unknown"
}

// ParseMovementKind convierte el código persistido; falla con tipos desconocidos.
func ParseMovementKind(s string) (MovementKind, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	for _, k := range MovementKinds {
		if k.String() == code {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("tipo de movimiento desconocido: %q", s)
}

// Sign signo esperado de la cantidad: +1 entradas, -1 salidas, 0 si puede ser ambos.
func (k MovementKind) Sign() int {
	switch k {
	case KindReceipt, KindTransferIn:
		return 1
	case KindConsumption, KindTransferOut, KindWaste, KindShrink:
		return -1
	case KindAdjustment, KindCount, KindInitialCount:
		return 0
	}
	return 0
}

// MarshalText serializa el tipo como su código.
func (k MovementKind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, fmt.Errorf("tipo de movimiento sin definir")
	}
	return []byte(k.String()), nil
}

// UnmarshalText interpreta el código del tipo.
func (k *MovementKind) UnmarshalText(b []byte) error {
	parsed, err := ParseMovementKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Movement registro inmutable del libro. Nunca se actualiza ni borra; las correcciones
// se hacen con movimientos compensatorios.
type Movement struct {
	ID               string
	Sequence         int64 // orden del libro (snowflake)
	TransactionID    string
	ProductID        string
	SiteID           string
	LocationID       string
	Kind             MovementKind
	Quantity         decimal.Decimal // firmada, en unidad de stock
	InputQuantity    *decimal.Decimal
	InputUnit        string
	ConversionFactor decimal.Decimal
	UnitCost         *decimal.Decimal
	TotalCost        *decimal.Decimal
	Reference        string
	Note             string
	CreatedBy        string
	CreatedAt        time.Time
}

// Scope alcance del movimiento.
func (m *Movement) Scope() Scope {
	return Scope{SiteID: m.SiteID, LocationID: m.LocationID}
}
