package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas salvo decimal).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente en el alcance")
)

// Errores de conversión de unidades. Todos son negativas a adivinar una conversión.
var (
	ErrUnknownUnit                = errors.New("unidad desconocida")
	ErrUnitInactive               = errors.New("unidad inactiva")
	ErrIncompatibleUnitFamily     = errors.New("unidades de familias incompatibles")
	ErrInvalidQuantity            = errors.New("cantidad inválida")
	ErrInvalidProfileUnitMismatch = errors.New("el perfil no corresponde a la unidad de captura")
	ErrInvalidProfile             = errors.New("perfil de conversión inválido")
	ErrNoConversionConfigured     = errors.New("no hay conversión configurada")
	ErrInvalidPrice               = errors.New("precio inválido")
	ErrDegenerateConversion       = errors.New("conversión degenerada")
)

// IsConversionError indica si err pertenece a la capa de conversión de unidades.
func IsConversionError(err error) bool {
	for _, target := range []error{
		ErrUnknownUnit, ErrUnitInactive, ErrIncompatibleUnitFamily, ErrInvalidQuantity,
		ErrInvalidProfileUnitMismatch, ErrInvalidProfile, ErrNoConversionConfigured,
		ErrInvalidPrice, ErrDegenerateConversion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidationError campo obligatorio ausente o mal formado. Se detecta antes de cualquier escritura.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError la cantidad solicitada supera lo disponible en el alcance elegido.
type InsufficientStockError struct {
	ProductID  string
	SiteID     string
	LocationID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	scope := e.SiteID
	if e.LocationID != "" {
		scope = e.SiteID + "/" + e.LocationID
	}
	return fmt.Sprintf("stock insuficiente para producto %s en %s: disponible %s, solicitado %s",
		e.ProductID, scope, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Step paso de escritura del protocolo del libro de movimientos.
type Step string

const (
	StepMovementInsert Step = "movement_insert"
	StepSnapshotUpsert Step = "snapshot_upsert"
	StepCostUpdate     Step = "cost_update"
)

// StepError indica qué tabla no se pudo escribir para que el operador concilie.
// Los pasos posteriores nunca se intentan.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("falló el paso %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepFailed envuelve err con el paso que falló; nil si err es nil.
func StepFailed(step Step, err error) error {
	if err == nil {
		return nil
	}
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Step: step, Err: err}
}

// FailedStep devuelve el paso de un StepError, o "" si err no lo es.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
