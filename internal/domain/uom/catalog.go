package uom

import (
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Catalog tabla de unidades indexada por código normalizado. Inmutable tras construirse.
type Catalog struct {
	units map[string]entity.Unit
}

// NewCatalog valida y construye el catálogo: códigos únicos (sin distinguir mayúsculas),
// familia conocida y factor positivo.
func NewCatalog(units []entity.Unit) (*Catalog, error) {
	c := &Catalog{units: make(map[string]entity.Unit, len(units))}
	for _, u := range units {
		code := entity.NormalizeUnitCode(u.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: código vacío", domain.ErrInvalidInput)
		}
		if !u.Family.Valid() {
			return nil, fmt.Errorf("%w: familia %q de la unidad %q", domain.ErrInvalidInput, u.Family, code)
		}
		if !u.FactorToBase.IsPositive() {
			return nil, fmt.Errorf("%w: factor no positivo para %q", domain.ErrInvalidInput, code)
		}
		if _, dup := c.units[code]; dup {
			return nil, fmt.Errorf("%w: unidad %q", domain.ErrDuplicate, code)
		}
		u.Code = code
		c.units[code] = u
	}
	return c, nil
}

// DefaultCatalog catálogo sembrado con DefaultUnits.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultUnits())
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultUnits unidades sembradas. Base por familia: ml, g, unit.
func DefaultUnits() []entity.Unit {
	d := decimal.RequireFromString
	two, three := 2, 3
	return []entity.Unit{
		{Code: "ml", Name: "Mililitro", Family: entity.FamilyVolume, FactorToBase: d("1"), Symbol: "ml", Active: true},
		{Code: "cl", Name: "Centilitro", Family: entity.FamilyVolume, FactorToBase: d("10"), Symbol: "cl", Active: true},
		{Code: "l", Name: "Litro", Family: entity.FamilyVolume, FactorToBase: d("1000"), Symbol: "L", DisplayDigits: &three, Active: true},
		{Code: "gal", Name: "Galón", Family: entity.FamilyVolume, FactorToBase: d("3785.411784"), Symbol: "gal", DisplayDigits: &three, Active: true},
		{Code: "mg", Name: "Miligramo", Family: entity.FamilyMass, FactorToBase: d("0.001"), Symbol: "mg", Active: true},
		{Code: "g", Name: "Gramo", Family: entity.FamilyMass, FactorToBase: d("1"), Symbol: "g", Active: true},
		{Code: "kg", Name: "Kilogramo", Family: entity.FamilyMass, FactorToBase: d("1000"), Symbol: "kg", DisplayDigits: &three, Active: true},
		{Code: "lb", Name: "Libra", Family: entity.FamilyMass, FactorToBase: d("453.59237"), Symbol: "lb", DisplayDigits: &two, Active: true},
		{Code: "oz", Name: "Onza", Family: entity.FamilyMass, FactorToBase: d("28.349523125"), Symbol: "oz", DisplayDigits: &two, Active: true},
		{Code: "unit", Name: "Unidad", Family: entity.FamilyCount, FactorToBase: d("1"), Symbol: "u", Active: true},
		{Code: "pair", Name: "Par", Family: entity.FamilyCount, FactorToBase: d("2"), Symbol: "par", Active: true},
		{Code: "dozen", Name: "Docena", Family: entity.FamilyCount, FactorToBase: d("12"), Symbol: "doc", Active: true},
	}
}

// Lookup busca una unidad activa por código (sin distinguir mayúsculas).
func (c *Catalog) Lookup(code string) (entity.Unit, error) {
	norm := entity.NormalizeUnitCode(code)
	u, ok := c.units[norm]
	if !ok {
		return entity.Unit{}, fmt.Errorf("%w: %q", domain.ErrUnknownUnit, code)
	}
	if !u.Active {
		return entity.Unit{}, fmt.Errorf("%w: %q", domain.ErrUnitInactive, code)
	}
	return u, nil
}

// Has indica si el código existe en el catálogo, activo o no.
func (c *Catalog) Has(code string) bool {
	_, ok := c.units[entity.NormalizeUnitCode(code)]
	return ok
}

// Units lista las unidades ordenadas por familia y factor.
func (c *Catalog) Units() []entity.Unit {
	out := make([]entity.Unit, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		if cmp := out[i].FactorToBase.Cmp(out[j].FactorToBase); cmp != 0 {
			return cmp < 0
		}
		return out[i].Code < out[j].Code
	})
	return out
}
