package http

import (
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/allocation"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// InventoryHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{ledger: ledger, log: log}
}

// identity identidad del token; responde 401 o 403 si no puede operar en la sede.
func (h *InventoryHandler) identity(c *fiber.Ctx, siteID string) (jwt.Identity, bool, error) {
	id := GetIdentity(c)
	if id.UserID == "" || id.CompanyID == "" {
		return id, false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if siteID != "" && !id.CanOperate(siteID) {
		return id, false, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a la sede"})
	}
	return id, true, nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// RecordReceipt godoc
// @Summary      Registrar entrada de mercancía
// @Description  Movimiento de entrada, foto de cantidad y, si el producto tiene costo automático, promedio ponderado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "product_id, site_id, quantity, input_unit, unit_cost o pack_price"
// @Success      201   {object}  dto.LedgerResultDTO
// @Success      207   {object}  dto.LedgerResultDTO  "movimiento confirmado, costo sin actualizar"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) RecordReceipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.RecordReceipt(c.Context(), inventory.ReceiptCommand{
		CompanyID:  id.CompanyID,
		UserID:     id.UserID,
		ProductID:  in.ProductID,
		SiteID:     in.SiteID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		InputUnit:  in.InputUnit,
		Context:    entity.UsageContext(in.Context),
		UnitCost:   in.UnitCost,
		PackPrice:  in.PackPrice,
		PackQty:    in.PackQty,
		PackUnit:   in.PackUnit,
		TaxRate:    in.TaxRate,
		Reference:  in.Reference,
		Note:       in.Note,
	})
	return writeResult(c, h.log, res, err)
}

// RecordAdjustment godoc
// @Summary      Ajuste manual de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "quantity positiva, direction increase|decrease, reason"
// @Success      201   {object}  dto.LedgerResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RecordAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.RecordAdjustment(c.Context(), inventory.AdjustmentCommand{
		CompanyID:  id.CompanyID,
		UserID:     id.UserID,
		ProductID:  in.ProductID,
		SiteID:     in.SiteID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		InputUnit:  in.InputUnit,
		Direction:  in.Direction,
		Reason:     in.Reason,
	})
	return writeResult(c, h.log, res, err)
}

// RecordCount godoc
// @Summary      Aplicar conteo físico
// @Description  Ajusta la foto a la cantidad contada. Sin diferencia no escribe nada (200, skipped).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CountRequest  true  "counted_quantity >= 0"
// @Success      200   {object}  dto.LedgerResultDTO
// @Success      201   {object}  dto.LedgerResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.RecordCount(c.Context(), inventory.CountCommand{
		CompanyID:       id.CompanyID,
		UserID:          id.UserID,
		ProductID:       in.ProductID,
		SiteID:          in.SiteID,
		LocationID:      in.LocationID,
		CountedQuantity: in.CountedQuantity,
		InputUnit:       in.InputUnit,
		Note:            in.Note,
	})
	return writeResult(c, h.log, res, err)
}

// RecordWithdrawal godoc
// @Summary      Retiro desde una ubicación
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawalRequest  true  "kind consumption|waste|shrink"
// @Success      201   {object}  dto.LedgerResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/withdrawals [post]
func (h *InventoryHandler) RecordWithdrawal(c *fiber.Ctx) error {
	var in dto.WithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.RecordWithdrawal(c.Context(), inventory.WithdrawalCommand{
		CompanyID:  id.CompanyID,
		UserID:     id.UserID,
		ProductID:  in.ProductID,
		SiteID:     in.SiteID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		InputUnit:  in.InputUnit,
		Kind:       in.Kind,
		Reference:  in.Reference,
		Note:       in.Note,
	})
	return writeResult(c, h.log, res, err)
}

// RecordTransfer godoc
// @Summary      Traslado entre ubicaciones de la misma sede
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "from_location_id, to_location_id, quantity"
// @Success      201   {object}  dto.LedgerResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) RecordTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.RecordTransfer(c.Context(), inventory.TransferCommand{
		CompanyID:      id.CompanyID,
		UserID:         id.UserID,
		ProductID:      in.ProductID,
		SiteID:         in.SiteID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		InputUnit:      in.InputUnit,
		Note:           in.Note,
	})
	return writeResult(c, h.log, res, err)
}

// ConsumeBatch godoc
// @Summary      Consumo de ingredientes de un lote de producción
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeBatchRequest  true  "recipe_id, batch_id, produced_qty"
// @Success      201   {object}  dto.LedgerResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/production/consume [post]
func (h *InventoryHandler) ConsumeBatch(c *fiber.Ctx) error {
	var in dto.ConsumeBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	res, err := h.ledger.ConsumeBatch(c.Context(), inventory.ConsumeBatchCommand{
		CompanyID:    id.CompanyID,
		UserID:       id.UserID,
		SiteID:       in.SiteID,
		RecipeID:     in.RecipeID,
		BatchID:      in.BatchID,
		ProducedQty:  in.ProducedQty,
		AllowPartial: in.AllowPartial,
		Note:         in.Note,
	})
	return writeResult(c, h.log, res, err)
}

// RebuildSnapshot godoc
// @Summary      Reconstruir una foto de cantidad desde el libro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildRequest  true  "product_id, site_id, location_id opcional"
// @Success      200   {object}  dto.SnapshotDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/snapshots/rebuild [post]
func (h *InventoryHandler) RebuildSnapshot(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, ok, err := h.identity(c, in.SiteID)
	if !ok {
		return err
	}
	snap, err := h.ledger.RebuildSnapshot(c.Context(), inventory.RebuildCommand{
		CompanyID:  id.CompanyID,
		UserID:     id.UserID,
		ProductID:  in.ProductID,
		SiteID:     in.SiteID,
		LocationID: in.LocationID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToSnapshotDTO(*snap))
}

// PlanAllocation godoc
// @Summary      Vista previa del plan de extracción
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        site_id     query  string  true  "Sede"
// @Param        quantity    query  string  true  "Cantidad requerida en unidad de stock"
// @Success      200  {object}  dto.AllocationPlanDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/allocation-plan [get]
func (h *InventoryHandler) PlanAllocation(c *fiber.Ctx) error {
	siteID := c.Query("site_id")
	id, ok, err := h.identity(c, siteID)
	if !ok {
		return err
	}
	required, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity: no es un número"})
	}
	productID := c.Query("product_id")
	plan, err := h.ledger.PlanAllocation(c.Context(), id.CompanyID, productID, siteID, required)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toPlanDTO(productID, required, plan))
}

// ListMovements godoc
// @Summary      Movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "Producto"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Máximo 500"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	id, ok, err := h.identity(c, "")
	if !ok {
		return err
	}
	page, ok, err := h.page(c)
	if !ok {
		return err
	}
	from, ferr := queryTime(c, "from")
	to, terr := queryTime(c, "to")
	if ferr != nil || terr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to: formato RFC3339"})
	}
	list, err := h.ledger.ListMovements(c.Context(), id.CompanyID, c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.MovementListResponse{
		Movements: make([]dto.MovementDTO, 0, len(list)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}
	for _, m := range list {
		out.Movements = append(out.Movements, dto.ToMovementDTO(m))
	}
	return c.JSON(out)
}

// ListCostEvents godoc
// @Summary      Auditoría de costos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "Producto"
// @Param        limit  query  int     false  "Máximo 500"
// @Success      200  {object}  dto.CostEventListResponse
// @Router       /api/inventory/products/{id}/cost-events [get]
func (h *InventoryHandler) ListCostEvents(c *fiber.Ctx) error {
	id, ok, err := h.identity(c, "")
	if !ok {
		return err
	}
	page, ok, err := h.page(c)
	if !ok {
		return err
	}
	list, err := h.ledger.ListCostEvents(c.Context(), id.CompanyID, c.Params("id"), page.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CostEventListResponse{
		CostEvents: make([]*dto.CostEventDTO, 0, len(list)),
		Page:       dto.PageResponse{Limit: page.Limit, Total: len(list)},
	}
	for _, ev := range list {
		out.CostEvents = append(out.CostEvents, dto.ToCostEventDTO(ev))
	}
	return c.JSON(out)
}

var pageValidate = validator.New()

// page lee limit/offset de la query; responde 400 si no son válidos.
func (h *InventoryHandler) page(c *fiber.Ctx) (dto.PageRequest, bool, error) {
	var req dto.PageRequest
	if err := c.QueryParser(&req); err != nil {
		return req, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset: deben ser enteros"})
	}
	if err := pageValidate.Struct(req); err != nil {
		return req, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION",
			Message: "limit debe estar entre 0 y 500 y offset no puede ser negativo"})
	}
	return req.WithDefaults(), true, nil
}

// queryTime lee un parámetro RFC3339 opcional.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toPlanDTO(ingredientID string, required decimal.Decimal, plan allocation.Plan) dto.AllocationPlanDTO {
	draws := make([]dto.DrawDTO, 0, len(plan.Draws))
	for _, d := range plan.Draws {
		draws = append(draws, dto.DrawDTO{LocationID: d.LocationID, Quantity: d.Quantity})
	}
	return dto.AllocationPlanDTO{
		IngredientID: ingredientID,
		Required:     required,
		Draws:        draws,
		Missing:      plan.Missing,
		Satisfied:    plan.Satisfied(),
	}
}
