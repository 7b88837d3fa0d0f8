package dto

import "github.com/shopspring/decimal"

// ConversionResponse resultado de GET /api/uom/convert.
type ConversionResponse struct {
	Quantity decimal.Decimal `json:"quantity"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Result   decimal.Decimal `json:"result"`
	Factor   decimal.Decimal `json:"factor"`
}

// UnitDTO unidad del catálogo.
type UnitDTO struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Family        string          `json:"family"`
	FactorToBase  decimal.Decimal `json:"factor_to_base"`
	Symbol        string          `json:"symbol,omitempty"`
	DisplayDigits *int            `json:"display_digits,omitempty"`
}
