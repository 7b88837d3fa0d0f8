package inventory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Direcciones de un ajuste manual.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// ReceiptCommand entrada de mercancía. Quantity va en InputUnit (o en la unidad de stock si vacío).
// UnitCost es por unidad de captura; alternativamente PackPrice/PackQty/PackUnit.
type ReceiptCommand struct {
	CompanyID  string
	UserID     string `validate:"required"`
	ProductID  string `validate:"required"`
	SiteID     string `validate:"required"`
	LocationID string
	Quantity   decimal.Decimal
	InputUnit  string `validate:"max=32"`
	Context    entity.UsageContext
	UnitCost   *decimal.Decimal
	PackPrice  *decimal.Decimal
	PackQty    *decimal.Decimal
	PackUnit   string `validate:"max=32"`
	TaxRate    *decimal.Decimal
	Reference  string `validate:"max=120"`
	Note       string `validate:"max=500"`
}

// AdjustmentCommand ajuste manual: magnitud positiva más dirección; el motivo es obligatorio.
type AdjustmentCommand struct {
	CompanyID  string
	UserID     string `validate:"required"`
	ProductID  string `validate:"required"`
	SiteID     string `validate:"required"`
	LocationID string
	Quantity   decimal.Decimal
	InputUnit  string `validate:"max=32"`
	Direction  string `validate:"required,oneof=increase decrease"`
	Reason     string `validate:"required,max=500"`
}

// CountCommand conteo físico aprobado. CountedQuantity es lo contado, no el delta.
type CountCommand struct {
	CompanyID       string
	UserID          string `validate:"required"`
	ProductID       string `validate:"required"`
	SiteID          string `validate:"required"`
	LocationID      string
	CountedQuantity decimal.Decimal
	InputUnit       string `validate:"max=32"`
	Note            string `validate:"max=500"`
}

// WithdrawalCommand retiro desde una ubicación física.
type WithdrawalCommand struct {
	CompanyID  string
	UserID     string `validate:"required"`
	ProductID  string `validate:"required"`
	SiteID     string `validate:"required"`
	LocationID string `validate:"required"`
	Quantity   decimal.Decimal
	InputUnit  string `validate:"max=32"`
	Kind       string `validate:"omitempty,oneof=consumption waste shrink"`
	Reference  string `validate:"max=120"`
	Note       string `validate:"max=500"`
}

// TransferCommand traslado entre dos ubicaciones de la misma sede.
type TransferCommand struct {
	CompanyID      string
	UserID         string `validate:"required"`
	ProductID      string `validate:"required"`
	SiteID         string `validate:"required"`
	FromLocationID string `validate:"required"`
	ToLocationID   string `validate:"required,nefield=FromLocationID"`
	Quantity       decimal.Decimal
	InputUnit      string `validate:"max=32"`
	Note           string `validate:"max=500"`
}

// ConsumeBatchCommand consumo de ingredientes de un lote de producción.
type ConsumeBatchCommand struct {
	CompanyID    string
	UserID       string `validate:"required"`
	SiteID       string `validate:"required"`
	RecipeID     string `validate:"required"`
	BatchID      string `validate:"required,max=120"`
	ProducedQty  decimal.Decimal
	AllowPartial bool
	Note         string `validate:"max=500"`
}

// RebuildCommand reconstrucción de una foto de cantidad desde el libro.
type RebuildCommand struct {
	CompanyID  string
	UserID     string `validate:"required"`
	ProductID  string `validate:"required"`
	SiteID     string `validate:"required"`
	LocationID string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return snakeCase(fld.Name)
	})
	return v
}

// validateCommand valida las etiquetas del comando y devuelve un *domain.ValidationError legible.
func validateCommand(cmd interface{}) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("command", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "es obligatorio")
	case "max":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("no debe superar %s caracteres", fe.Param()))
	case "oneof":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("debe ser uno de: %s", fe.Param()))
	case "nefield":
		return domain.NewValidationError(fe.Field(), "debe ser distinto del origen")
	}
	return domain.NewValidationError(fe.Field(), "no es válido ("+fe.Tag()+")")
}

func requirePositive(field string, q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.NewValidationError(field, "debe ser mayor que cero")
	}
	return nil
}

func requireNonNegative(field string, q *decimal.Decimal) error {
	if q != nil && q.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	return nil
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "_i_d", "_id")
}
