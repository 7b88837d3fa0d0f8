package inventory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/quantity"
	"github.com/shopspring/decimal"
)

// WeightedAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
//
// Nunca falla: las entradas negativas se llevan a cero y el resultado se redondea a 6 decimales.
// Una entrada nula o negativa no mueve el costo; sin base previa el costo es el de la entrada.
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	stockActual = quantity.NonNegative(stockActual)
	costoActual = quantity.NonNegative(costoActual)
	cantEntrada = quantity.NonNegative(cantEntrada)
	costoEntrada = quantity.NonNegative(costoEntrada)

	if !cantEntrada.IsPositive() {
		return quantity.Round(costoActual)
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return quantity.Round(costoEntrada)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return quantity.Round(num.Div(sum))
}

// GrossCost costo con impuesto: neto * (1 + tasa). Tasas negativas se tratan como cero.
func GrossCost(net, taxRate decimal.Decimal) decimal.Decimal {
	return quantity.Round(quantity.NonNegative(net).Mul(decimal.NewFromInt(1).Add(quantity.NonNegative(taxRate))))
}
