package entity

import "github.com/shopspring/decimal"

// Recipe receta de producción; YieldQty es lo que rinde en la unidad de stock del producto final.
type Recipe struct {
	ID        string
	ProductID string
	YieldQty  decimal.Decimal
	Lines     []RecipeLine
}

// RecipeLine ingrediente por rendimiento de receta.
type RecipeLine struct {
	IngredientID string
	Quantity     decimal.Decimal
	Active       bool
}
