package uom

import (
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/quantity"
	"github.com/shopspring/decimal"
)

// Método aplicado para llegar a la unidad de stock.
const (
	MethodIdentity = "identity"
	MethodProfile  = "profile"
	MethodFamily   = "family"
)

// Conversion resultado de llevar una cantidad capturada a la unidad de stock.
// Factor se guarda en el movimiento para trazabilidad, incluso cuando es 1.
type Conversion struct {
	Quantity decimal.Decimal
	Factor   decimal.Decimal
	Method   string
}

// Converter convierte cantidades usando el catálogo de unidades.
type Converter struct {
	catalog *Catalog
}

// NewConverter construye el conversor sobre un catálogo.
func NewConverter(catalog *Catalog) *Converter {
	return &Converter{catalog: catalog}
}

// Catalog devuelve el catálogo subyacente.
func (c *Converter) Catalog() *Catalog { return c.catalog }

// Factor devuelve from.FactorToBase / to.FactorToBase; ambas unidades deben compartir familia.
func (c *Converter) Factor(fromUnit, toUnit string) (decimal.Decimal, error) {
	from, to, err := c.pair(fromUnit, toUnit)
	if err != nil {
		return decimal.Zero, err
	}
	return from.FactorToBase.Div(to.FactorToBase), nil
}

// Convert convierte con matemática estricta de familia y redondea a 6 decimales.
// Las unidades se resuelven antes de mirar la cantidad.
func (c *Converter) Convert(q decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, error) {
	from, to, err := c.pair(fromUnit, toUnit)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, q.String())
	}
	return quantity.Round(q.Mul(from.FactorToBase).Div(to.FactorToBase)), nil
}

func (c *Converter) pair(fromUnit, toUnit string) (entity.Unit, entity.Unit, error) {
	from, err := c.catalog.Lookup(fromUnit)
	if err != nil {
		return entity.Unit{}, entity.Unit{}, err
	}
	to, err := c.catalog.Lookup(toUnit)
	if err != nil {
		return entity.Unit{}, entity.Unit{}, err
	}
	if from.Family != to.Family {
		return entity.Unit{}, entity.Unit{}, fmt.Errorf("%w: %s (%s) → %s (%s)",
			domain.ErrIncompatibleUnitFamily, from.Code, from.Family, to.Code, to.Family)
	}
	return from, to, nil
}

// ConvertByProfile convierte con el perfil de negocio del producto, sin matemática de familia.
// Sin perfil, las unidades deben ser idénticas: el sistema no adivina conversiones.
func ConvertByProfile(q decimal.Decimal, inputUnit, stockUnit string, profile *entity.ProductUomProfile) (decimal.Decimal, error) {
	conv, err := convertByProfile(q, inputUnit, stockUnit, profile)
	if err != nil {
		return decimal.Zero, err
	}
	return conv.Quantity, nil
}

func convertByProfile(q decimal.Decimal, inputUnit, stockUnit string, profile *entity.ProductUomProfile) (Conversion, error) {
	if q.IsNegative() {
		return Conversion{}, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, q.String())
	}
	in := entity.NormalizeUnitCode(inputUnit)
	stock := entity.NormalizeUnitCode(stockUnit)
	if profile == nil {
		if in != stock {
			return Conversion{}, fmt.Errorf("%w: %q → %q", domain.ErrNoConversionConfigured, inputUnit, stockUnit)
		}
		return Conversion{Quantity: quantity.Round(q), Factor: decimal.NewFromInt(1), Method: MethodIdentity}, nil
	}
	if entity.NormalizeUnitCode(profile.InputUnitCode) != in {
		return Conversion{}, fmt.Errorf("%w: perfil en %q, captura en %q",
			domain.ErrInvalidProfileUnitMismatch, profile.InputUnitCode, inputUnit)
	}
	if !profile.QtyInInputUnit.IsPositive() || !profile.QtyInStockUnit.IsPositive() {
		return Conversion{}, fmt.Errorf("%w: relación %s:%s", domain.ErrInvalidProfile,
			profile.QtyInInputUnit.String(), profile.QtyInStockUnit.String())
	}
	factor := profile.QtyInStockUnit.Div(profile.QtyInInputUnit)
	return Conversion{
		Quantity: quantity.Round(q.Mul(profile.QtyInStockUnit).Div(profile.QtyInInputUnit)),
		Factor:   factor,
		Method:   MethodProfile,
	}, nil
}

// SelectProfileForContext elige el perfil activo y por defecto del producto para el contexto;
// si no hay, cae al por defecto del contexto general; nil si no existe ninguno.
func SelectProfileForContext(profiles []entity.ProductUomProfile, productID string, usage entity.UsageContext) *entity.ProductUomProfile {
	if p := defaultFor(profiles, productID, usage); p != nil {
		return p
	}
	if usage != entity.ContextGeneral {
		return defaultFor(profiles, productID, entity.ContextGeneral)
	}
	return nil
}

func defaultFor(profiles []entity.ProductUomProfile, productID string, usage entity.UsageContext) *entity.ProductUomProfile {
	var matches []entity.ProductUomProfile
	for _, p := range profiles {
		if p.ProductID == productID && p.Active && p.IsDefault && p.Context == usage {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	// Un solo por defecto por contexto se mantiene aguas arriba; el orden por ID fija el desempate.
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	chosen := matches[0]
	return &chosen
}

// ComputeCostPerStockUnit convierte packQty a la unidad de stock y divide el precio del empaque.
func (c *Converter) ComputeCostPerStockUnit(packPrice, packQty decimal.Decimal, packUnit, stockUnit string) (decimal.Decimal, error) {
	if packPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidPrice, packPrice.String())
	}
	stockQty, err := c.Convert(packQty, packUnit, stockUnit)
	if err != nil {
		return decimal.Zero, err
	}
	if !stockQty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s %s = %s %s", domain.ErrDegenerateConversion,
			packQty.String(), packUnit, stockQty.String(), stockUnit)
	}
	return quantity.Round(packPrice.Div(stockQty)), nil
}

// ResolveStockQuantity lleva la cantidad capturada a la unidad de stock: unidades idénticas
// usan factor 1, un perfil manda sobre la familia, y sin perfil solo se acepta la matemática
// estricta entre unidades del catálogo de la misma familia.
func (c *Converter) ResolveStockQuantity(q decimal.Decimal, inputUnit, stockUnit string, profile *entity.ProductUomProfile) (Conversion, error) {
	if inputUnit == "" || entity.NormalizeUnitCode(inputUnit) == entity.NormalizeUnitCode(stockUnit) {
		return convertByProfile(q, stockUnit, stockUnit, nil)
	}
	if profile != nil {
		return convertByProfile(q, inputUnit, stockUnit, profile)
	}
	if !c.catalog.Has(inputUnit) || !c.catalog.Has(stockUnit) {
		return Conversion{}, fmt.Errorf("%w: %q → %q", domain.ErrNoConversionConfigured, inputUnit, stockUnit)
	}
	factor, err := c.Factor(inputUnit, stockUnit)
	if err != nil {
		return Conversion{}, err
	}
	converted, err := c.Convert(q, inputUnit, stockUnit)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Quantity: converted, Factor: factor, Method: MethodFamily}, nil
}
