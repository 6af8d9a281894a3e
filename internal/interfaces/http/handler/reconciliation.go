package handler

import (
	"time"

	appfinance "github.com/feedlot/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// BatchSchedule reports the nightly reconciliation batch
type BatchSchedule interface {
	NextRunAt() time.Time
	LastRun() (*appfinance.BatchSummary, *time.Time)
}

// ReconciliationHandler handles bank statement reconciliation endpoints
type ReconciliationHandler struct {
	BaseHandler
	service  *appfinance.ReconciliationService
	schedule BatchSchedule
}

// NewReconciliationHandler creates a new ReconciliationHandler. schedule may
// be nil when the nightly batch is disabled.
func NewReconciliationHandler(service *appfinance.ReconciliationService, schedule BatchSchedule) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:  service,
		schedule: schedule,
	}
}

// ImportStatementsRequest carries parsed bank movements
type ImportStatementsRequest struct {
	Entries []appfinance.ImportStatementRequest `json:"entries" binding:"required,min=1,max=1000,dive"`
}

// ScheduleResponse describes the nightly batch
type ScheduleResponse struct {
	Enabled   bool                     `json:"enabled"`
	NextRunAt *time.Time               `json:"next_run_at,omitempty"`
	LastRunAt *time.Time               `json:"last_run_at,omitempty"`
	LastRun   *appfinance.BatchSummary `json:"last_run,omitempty"`
}

// ImportStatements godoc
// @ID           importBankStatements
//
//	@Summary		Import bank statement entries
//	@Description	Store parsed bank movements as unreconciled entries
//	@Tags			reconciliation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ImportStatementsRequest	true	"Entries"
//	@Success		201		{object}	APIResponse[[]finance.BankStatementEntry]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/finance/statements [post]
func (h *ReconciliationHandler) ImportStatements(c *gin.Context) {
	var req ImportStatementsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entries, err := h.service.ImportStatements(c.Request.Context(), req.Entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entries)
}

// CreateAccount godoc
// @ID           createFinancialAccount
//
//	@Summary		Register a payable or receivable
//	@Tags			reconciliation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appfinance.CreateAccountRequest	true	"Account"
//	@Success		201		{object}	APIResponse[finance.FinancialAccount]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/finance/accounts [post]
func (h *ReconciliationHandler) CreateAccount(c *gin.Context) {
	var req appfinance.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// FindCandidates godoc
// @ID           findReconciliationCandidates
//
//	@Summary		Score open accounts against a statement entry
//	@Tags			reconciliation
//	@Produce		json
//	@Param			id	path		string	true	"Statement ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appfinance.CandidatesResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/finance/statements/{id}/candidates [get]
func (h *ReconciliationHandler) FindCandidates(c *gin.Context) {
	statementID, ok := h.ParamID(c, "id", "statement")
	if !ok {
		return
	}

	resp, err := h.service.FindCandidates(c.Request.Context(), statementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Reconcile godoc
// @ID           reconcileStatement
//
//	@Summary		Reconcile a statement entry
//	@Description	Settle the chosen account, or mark the entry manually reconciled
//	@Description	when no account_id is given
//	@Tags			reconciliation
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Statement ID"	format(uuid)
//	@Param			request	body		appfinance.CommitRequest	true	"Decision"
//	@Success		201		{object}	APIResponse[finance.ReconciliationRecord]
//	@Failure		409		{object}	ErrorResponse	"Already reconciled"
//	@Failure		422		{object}	ErrorResponse	"Direction mismatch"
//	@Router			/finance/statements/{id}/reconcile [post]
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	statementID, ok := h.ParamID(c, "id", "statement")
	if !ok {
		return
	}

	var req appfinance.CommitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.Commit(c.Request.Context(), statementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Undo godoc
// @ID           undoReconciliation
//
//	@Summary		Undo a reconciliation
//	@Description	Retire the record, reopen the account and free the statement entry
//	@Tags			reconciliation
//	@Produce		json
//	@Param			id	path		string	true	"Reconciliation record ID"	format(uuid)
//	@Success		200	{object}	APIResponse[finance.ReconciliationRecord]
//	@Failure		422	{object}	ErrorResponse	"Already undone"
//	@Router			/finance/reconciliations/{id}/undo [post]
func (h *ReconciliationHandler) Undo(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id", "reconciliation")
	if !ok {
		return
	}

	record, err := h.service.Undo(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// RunBatch godoc
// @ID           runReconciliationBatch
//
//	@Summary		Run the reconciliation batch now
//	@Tags			reconciliation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appfinance.BatchRequest	false	"Bank account filter"
//	@Success		200		{object}	APIResponse[appfinance.BatchSummary]
//	@Router			/finance/reconciliations/batch [post]
func (h *ReconciliationHandler) RunBatch(c *gin.Context) {
	var req appfinance.BatchRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	summary, err := h.service.RunBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Schedule godoc
// @ID           getReconciliationSchedule
//
//	@Summary		Nightly batch status
//	@Tags			reconciliation
//	@Produce		json
//	@Success		200	{object}	APIResponse[ScheduleResponse]
//	@Router			/finance/reconciliations/schedule [get]
func (h *ReconciliationHandler) Schedule(c *gin.Context) {
	resp := ScheduleResponse{}
	if h.schedule != nil {
		resp.Enabled = true
		if next := h.schedule.NextRunAt(); !next.IsZero() {
			resp.NextRunAt = &next
		}
		resp.LastRun, resp.LastRunAt = h.schedule.LastRun()
	}
	h.Success(c, resp)
}
