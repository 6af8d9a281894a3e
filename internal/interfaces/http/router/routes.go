package router

import (
	"github.com/feedlot/backend/internal/interfaces/http/handler"
)

// Handlers are the API handlers mounted by Routes
type Handlers struct {
	System         *handler.SystemHandler
	Lots           *handler.LotHandler
	Allocations    *handler.AllocationHandler
	IndirectCosts  *handler.IndirectCostHandler
	Reconciliation *handler.ReconciliationHandler
	Reports        *handler.ReportHandler
}

// Routes builds the domain groups of the feedlot API
func Routes(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping).
		GET("/info", h.System.GetSystemInfo).
		GET("/ready", h.System.Ready)

	lots := NewDomainGroup("lots", "/lots").
		POST("", h.Lots.CreateLot).
		GET("", h.Lots.ListLots).
		GET("/:id", h.Lots.GetLot).
		POST("/:id/sale", h.Lots.RecordSale)

	pens := NewDomainGroup("pens", "/pens").
		POST("", h.Lots.CreatePen).
		GET("/:id", h.Lots.GetPen)

	costing := NewDomainGroup("costing", "/costing").
		POST("/allocations", h.Allocations.AllocateCost).
		GET("/allocations/:id", h.Allocations.GetAllocation).
		POST("/lots/:id/pens", h.Allocations.AssignLotToPen).
		DELETE("/links/:id", h.Allocations.RemoveLink).
		POST("/lots/:id/mortality", h.Allocations.RecordMortality).
		POST("/lots/:id/weight-loss", h.Allocations.RecordWeightLoss)
	costing.Group("indirect", "/indirect").
		POST("", h.IndirectCosts.Generate).
		GET("", h.IndirectCosts.List).
		GET("/summary", h.IndirectCosts.Summary).
		GET("/:id", h.IndirectCosts.Get).
		POST("/:id/approve", h.IndirectCosts.Approve).
		POST("/:id/apply", h.IndirectCosts.Apply).
		POST("/:id/discard", h.IndirectCosts.Discard)

	finance := NewDomainGroup("finance", "/finance").
		POST("/statements", h.Reconciliation.ImportStatements).
		GET("/statements/:id/candidates", h.Reconciliation.FindCandidates).
		POST("/statements/:id/reconcile", h.Reconciliation.Reconcile).
		POST("/accounts", h.Reconciliation.CreateAccount).
		POST("/reconciliations/batch", h.Reconciliation.RunBatch).
		GET("/reconciliations/schedule", h.Reconciliation.Schedule).
		POST("/reconciliations/:id/undo", h.Reconciliation.Undo)

	reports := NewDomainGroup("reports", "/reports").
		POST("/income-statements", h.Reports.GenerateIncomeStatement).
		POST("/income-statements/compare", h.Reports.CompareIncomeStatements).
		GET("/income-statements/:id", h.Reports.GetIncomeStatement)

	return []RouteRegistrar{system, lots, pens, costing, finance, reports}
}
