// Package quantity reúne el contrato numérico del núcleo: cantidades y costos decimales
// redondeados a 6 decimales en cada frontera de cálculo.
package quantity

import "github.com/shopspring/decimal"

// Scale decimales conservados en las fronteras de cálculo.
const Scale = 6

// Round redondea a Scale decimales (mitad lejos de cero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// NonNegative devuelve d o cero si d es negativo.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Equal compara a y b tras redondear ambos a Scale decimales.
func Equal(a, b decimal.Decimal) bool {
	return Round(a).Equal(Round(b))
}
