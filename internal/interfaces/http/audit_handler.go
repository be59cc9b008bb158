package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// AuditHandler consultas de solo lectura sobre el libro de auditoría.
type AuditHandler struct {
	query *ledger.QueryUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(query *ledger.QueryUseCase) *AuditHandler {
	return &AuditHandler{query: query}
}

// ListAll devuelve el libro paginado, más reciente primero.
func (h *AuditHandler) ListAll(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	entries, err := h.query.AuditAll(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromAuditEntry(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}

// ListByUnit devuelve el historial de una unidad.
func (h *AuditHandler) ListByUnit(c *fiber.Ctx) error {
	entries, err := h.query.AuditByUnit(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromAuditEntry(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}
