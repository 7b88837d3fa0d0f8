package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/uom"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// UomHandler conversiones de unidades y catálogo (protegido).
type UomHandler struct {
	converter *uom.Converter
	log       *logger.Logger
}

// NewUomHandler construye el handler.
func NewUomHandler(converter *uom.Converter, log *logger.Logger) *UomHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UomHandler{converter: converter, log: log}
}

// Convert godoc
// @Summary      Convertir una cantidad entre unidades de la misma familia
// @Tags         uom
// @Security     Bearer
// @Produce      json
// @Param        quantity  query  string  true  "Cantidad"
// @Param        from      query  string  true  "Unidad origen"
// @Param        to        query  string  true  "Unidad destino"
// @Success      200  {object}  dto.ConversionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/uom/convert [get]
func (h *UomHandler) Convert(c *fiber.Ctx) error {
	q, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity: no es un número"})
	}
	from, to := c.Query("from"), c.Query("to")
	result, err := h.converter.Convert(q, from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	factor, err := h.converter.Factor(from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ConversionResponse{Quantity: q, From: from, To: to, Result: result, Factor: factor})
}

// ListUnits godoc
// @Summary      Catálogo de unidades activas
// @Tags         uom
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitDTO
// @Router       /api/uom/units [get]
func (h *UomHandler) ListUnits(c *fiber.Ctx) error {
	units := h.converter.Catalog().Units()
	out := make([]dto.UnitDTO, 0, len(units))
	for _, u := range units {
		if !u.Active {
			continue
		}
		out = append(out, dto.UnitDTO{
			Code:          u.Code,
			Name:          u.Name,
			Family:        string(u.Family),
			FactorToBase:  u.FactorToBase,
			Symbol:        u.Symbol,
			DisplayDigits: u.DisplayDigits,
		})
	}
	return c.JSON(out)
}
