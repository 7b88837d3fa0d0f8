package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// writeError traduce los errores del dominio a códigos HTTP en un solo lugar.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var verr *domain.ValidationError
	var short *domain.InsufficientStockError
	var stepErr *domain.StepError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case domain.IsConversionError(err):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CONVERSION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.As(err, &short):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: short.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "operación concurrente, reintente"})
	case errors.As(err, &stepErr):
		// El operador necesita saber qué tabla quedó sin escribir; la causa solo va al log.
		log.Error().Err(stepErr.Err).Str("path", c.Path()).Str("step", string(stepErr.Step)).Msg("fallo de escritura del libro")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.StepErrorResponse{
			Code:    "STORAGE_WRITE_FAILED",
			Message: "falló el paso " + string(stepErr.Step),
			Step:    string(stepErr.Step),
		})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// writeResult responde 201 con lo confirmado. Si el movimiento quedó confirmado pero el costo
// no se pudo recalcular responde 207 con el resultado y la advertencia.
func writeResult(c *fiber.Ctx, log *logger.Logger, res *inventory.Result, err error) error {
	if err != nil && res == nil {
		return writeError(c, log, err)
	}
	out := toResultDTO(res)
	if err != nil {
		out.Warning = &dto.ErrorResponse{Code: "COST_UPDATE_FAILED", Message: err.Error()}
		return c.Status(fiber.StatusMultiStatus).JSON(out)
	}
	if res.Skipped {
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func toResultDTO(res *inventory.Result) dto.LedgerResultDTO {
	out := dto.LedgerResultDTO{
		TransactionID: res.TransactionID,
		Skipped:       res.Skipped,
		Movements:     make([]dto.MovementDTO, 0, len(res.Movements)),
		Snapshots:     make([]dto.SnapshotDTO, 0, len(res.Snapshots)),
		CostEvent:     dto.ToCostEventDTO(res.CostEvent),
	}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, dto.ToMovementDTO(m))
	}
	for _, s := range res.Snapshots {
		out.Snapshots = append(out.Snapshots, dto.ToSnapshotDTO(s))
	}
	for _, p := range res.Plans {
		out.Plans = append(out.Plans, toPlanDTO(p.IngredientID, p.Required, p.Plan))
	}
	return out
}
