package entity

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// UnitFamily familia física de una unidad; solo se convierte dentro de la misma familia.
type UnitFamily string

const (
	FamilyVolume UnitFamily = "volume"
	FamilyMass   UnitFamily = "mass"
	FamilyCount  UnitFamily = "count"
)

// Valid indica si la familia es conocida.
func (f UnitFamily) Valid() bool {
	switch f {
	case FamilyVolume, FamilyMass, FamilyCount:
		return true
	}
	return false
}

// Unit unidad de medida sembrada/administrada. FactorToBase = cuántas unidades base
// de su familia equivalen a una unidad de este código (ml, g, unit son la base).
type Unit struct {
	Code          string
	Name          string
	Family        UnitFamily
	FactorToBase  decimal.Decimal
	Symbol        string
	DisplayDigits *int
	Active        bool
}

// NormalizeUnitCode forma canónica del código (NFKC, sin espacios, plegado de mayúsculas);
// toda búsqueda usa esta forma. Un Caser no se comparte entre goroutines, por eso se crea aquí.
func NormalizeUnitCode(code string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(code)))
}
