package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// ReconciliationHandler maneja preview y commit de conciliaciones.
type ReconciliationHandler struct {
	uc *ledger.ReconciliationUseCase
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(uc *ledger.ReconciliationUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

// Preview clasifica el snapshot contra el store actual sin escribir nada.
func (h *ReconciliationHandler) Preview(c *fiber.Ctx) error {
	var in dto.ReconciliationPreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rows, err := h.uc.Preview(c.Context(), in.ToSnapshot())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReconciliationRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.FromReconciliationRow(row))
	}
	return c.JSON(fiber.Map{"total": len(out), "rows": out})
}

// Commit aplica las filas clasificadas como un solo lote atómico.
func (h *ReconciliationHandler) Commit(c *fiber.Ctx) error {
	var in dto.ReconciliationCommitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Commit(c.Context(), in.ToRows(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BatchResultResponse{Processed: result.Processed, UnitIDs: result.UnitIDs})
}
