package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BatchUC          *ledger.BatchUseCase
	QueryUC          *ledger.QueryUseCase
	ReconciliationUC *ledger.ReconciliationUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todo el libro de stock es protegido:
// cada mutación necesita un actor identificado para el asiento de auditoría.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.BatchUC, deps.QueryUC)
	stock := api.Group("/stock")
	stock.Post("/inbound", stockHandler.ProcessInbound)
	stock.Post("/withdrawals", stockHandler.ProcessWithdrawals)
	stock.Get("/units", stockHandler.ListUnits)
	stock.Get("/units/:id", stockHandler.GetUnit)
	stock.Put("/units/:id", stockHandler.UpdateUnit)

	reconciliationHandler := NewReconciliationHandler(deps.ReconciliationUC)
	reconciliation := stock.Group("/reconciliation")
	reconciliation.Post("/preview", reconciliationHandler.Preview)
	reconciliation.Post("/commit", reconciliationHandler.Commit)

	auditHandler := NewAuditHandler(deps.QueryUC)
	audit := api.Group("/audit")
	audit.Get("/", auditHandler.ListAll)
	audit.Get("/unit/:id", auditHandler.ListByUnit)
}
