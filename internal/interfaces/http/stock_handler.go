package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	batch *ledger.BatchUseCase
	query *ledger.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(batch *ledger.BatchUseCase, query *ledger.QueryUseCase) *StockHandler {
	return &StockHandler{batch: batch, query: query}
}

// ProcessInbound registra una entrada de mercancía por lote.
func (h *StockHandler) ProcessInbound(c *fiber.Ctx) error {
	var in dto.InboundBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.batch.ProcessInboundBatch(c.Context(), in.ToItems(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchResultResponse{Processed: result.Processed, UnitIDs: result.UnitIDs})
}

// ProcessWithdrawals descuenta cantidades por lote.
func (h *StockHandler) ProcessWithdrawals(c *fiber.Ctx) error {
	var in dto.WithdrawalBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.batch.ProcessWithdrawalBatch(c.Context(), in.ToItems(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BatchResultResponse{Processed: result.Processed, UnitIDs: result.UnitIDs})
}

// ListUnits devuelve todas las unidades de stock.
func (h *StockHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.query.ListUnits(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockUnitDTO, 0, len(units))
	for _, u := range units {
		out = append(out, dto.FromStockUnit(u))
	}
	return c.JSON(fiber.Map{"total": len(out), "units": out})
}

// GetUnit devuelve una unidad por LPN.
func (h *StockHandler) GetUnit(c *fiber.Ctx) error {
	unit, err := h.query.GetUnit(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromStockUnit(unit))
}

// UpdateUnit aplica una edición manual verificada por versión.
func (h *StockHandler) UpdateUnit(c *fiber.Ctx) error {
	var in dto.ManualEditRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.ManualEditInput{
		ID:           c.Params("id"),
		Version:      in.Version,
		MaterialCode: in.MaterialCode,
		Name:         in.Name,
		Category:     in.Category,
		Brand:        in.Brand,
		Supplier:     in.Supplier,
		Lot:          in.Lot,
		SourceDoc:    in.SourceDoc,
		UnitCost:     in.UnitCost,
		Width:        in.Width,
		Quantity:     in.Quantity,
		Zone:         in.Zone,
		Level:        in.Level,
		StandardQty:  in.StandardQty,
		MinThreshold: in.MinThreshold,
		Notes:        in.Notes,
	}
	if err := h.batch.UpdateUnit(c.Context(), input, GetActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unidad actualizada"})
}
