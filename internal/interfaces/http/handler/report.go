package handler

import (
	appreport "github.com/feedlot/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles income statement (DRE) endpoints
type ReportHandler struct {
	BaseHandler
	service *appreport.IncomeStatementService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *appreport.IncomeStatementService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// GenerateIncomeStatement godoc
// @ID           generateIncomeStatement
//
//	@Summary		Generate an income statement
//	@Description	Build the DRE of a lot, a pen or the whole operation for a period.
//	@Description	With persist=true the statement is stored and can be fetched later.
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appreport.GenerateRequest	true	"Entity and period"
//	@Success		200		{object}	APIResponse[report.IncomeStatement]
//	@Success		201		{object}	APIResponse[report.IncomeStatement]
//	@Failure		422		{object}	ErrorResponse	"No qualifying lots"
//	@Router			/reports/income-statements [post]
func (h *ReportHandler) GenerateIncomeStatement(c *gin.Context) {
	var req appreport.GenerateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	stmt, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Persist {
		h.Created(c, stmt)
		return
	}
	h.Success(c, stmt)
}

// GetIncomeStatement godoc
// @ID           getIncomeStatement
//
//	@Summary		Get a stored income statement
//	@Tags			reports
//	@Produce		json
//	@Param			id	path		string	true	"Statement ID"	format(uuid)
//	@Success		200	{object}	APIResponse[report.IncomeStatement]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/reports/income-statements/{id} [get]
func (h *ReportHandler) GetIncomeStatement(c *gin.Context) {
	id, ok := h.ParamID(c, "id", "income statement")
	if !ok {
		return
	}

	stmt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stmt)
}

// CompareIncomeStatements godoc
// @ID           compareIncomeStatements
//
//	@Summary		Compare lots or pens
//	@Description	Generate one statement per entity and rank them by net income
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appreport.CompareRequest	true	"Entities and period"
//	@Success		200		{object}	APIResponse[appreport.CompareResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/reports/income-statements/compare [post]
func (h *ReportHandler) CompareIncomeStatements(c *gin.Context) {
	var req appreport.CompareRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Compare(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
