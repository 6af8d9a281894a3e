package handler

import (
	appcosting "github.com/feedlot/backend/internal/application/costing"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IndirectCostHandler handles the indirect cost (rateio) workflow endpoints
type IndirectCostHandler struct {
	BaseHandler
	service *appcosting.IndirectCostService
}

// NewIndirectCostHandler creates a new IndirectCostHandler
func NewIndirectCostHandler(service *appcosting.IndirectCostService) *IndirectCostHandler {
	return &IndirectCostHandler{
		service: service,
	}
}

// ListIndirectQuery selects allocations by status
type ListIndirectQuery struct {
	Status string `form:"status" binding:"required,oneof=draft approved applied discarded"`
}

// Generate godoc
// @ID           generateIndirectCost
//
//	@Summary		Generate a draft indirect cost allocation
//	@Description	Apportion a period cost across the qualifying lots with the chosen basis
//	@Tags			indirect-costs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcosting.GenerateIndirectRequest	true	"Generation parameters"
//	@Success		201		{object}	APIResponse[costing.IndirectCostAllocation]
//	@Failure		422		{object}	ErrorResponse	"No lot qualifies or the basis totals zero"
//	@Router			/costing/indirect [post]
func (h *IndirectCostHandler) Generate(c *gin.Context) {
	var req appcosting.GenerateIndirectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	allocation, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, allocation)
}

// Get godoc
// @ID           getIndirectCost
//
//	@Summary		Get an indirect cost allocation
//	@Tags			indirect-costs
//	@Produce		json
//	@Param			id	path		string	true	"Allocation ID"	format(uuid)
//	@Success		200	{object}	APIResponse[costing.IndirectCostAllocation]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/costing/indirect/{id} [get]
func (h *IndirectCostHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id", "allocation")
	if !ok {
		return
	}

	allocation, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocation)
}

// List godoc
// @ID           listIndirectCosts
//
//	@Summary		List indirect cost allocations by status
//	@Tags			indirect-costs
//	@Produce		json
//	@Param			status	query		string	true	"Status"	Enums(draft, approved, applied, discarded)
//	@Success		200		{object}	APIResponse[[]costing.IndirectCostAllocation]
//	@Router			/costing/indirect [get]
func (h *IndirectCostHandler) List(c *gin.Context) {
	var query ListIndirectQuery
	if !h.BindQuery(c, &query) {
		return
	}

	allocations, err := h.service.ListByStatus(c.Request.Context(), costing.AllocationStatus(query.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, allocations, len(allocations))
}

// Approve godoc
// @ID           approveIndirectCost
//
//	@Summary		Approve a draft allocation
//	@Tags			indirect-costs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Allocation ID"	format(uuid)
//	@Param			request	body		appcosting.ApproveIndirectRequest	true	"Approver"
//	@Success		200		{object}	APIResponse[costing.IndirectCostAllocation]
//	@Failure		422		{object}	ErrorResponse	"Not a draft"
//	@Router			/costing/indirect/{id}/approve [post]
func (h *IndirectCostHandler) Approve(c *gin.Context) {
	id, ok := h.ParamID(c, "id", "allocation")
	if !ok {
		return
	}

	var req appcosting.ApproveIndirectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	allocation, err := h.service.Approve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocation)
}

// Apply godoc
// @ID           applyIndirectCost
//
//	@Summary		Apply an approved allocation
//	@Description	Post each line to its lot's ledger
//	@Tags			indirect-costs
//	@Produce		json
//	@Param			id	path		string	true	"Allocation ID"	format(uuid)
//	@Success		200	{object}	APIResponse[costing.IndirectCostAllocation]
//	@Failure		422	{object}	ErrorResponse	"Not approved"
//	@Router			/costing/indirect/{id}/apply [post]
func (h *IndirectCostHandler) Apply(c *gin.Context) {
	id, ok := h.ParamID(c, "id", "allocation")
	if !ok {
		return
	}

	allocation, err := h.service.Apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocation)
}

// Discard godoc
// @ID           discardIndirectCost
//
//	@Summary		Discard an allocation
//	@Description	Discarding an applied allocation reverses its postings
//	@Tags			indirect-costs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Allocation ID"	format(uuid)
//	@Param			request	body		appcosting.DiscardIndirectRequest	false	"Reason"
//	@Success		200		{object}	APIResponse[costing.IndirectCostAllocation]
//	@Failure		422		{object}	ErrorResponse	"Already discarded"
//	@Router			/costing/indirect/{id}/discard [post]
func (h *IndirectCostHandler) Discard(c *gin.Context) {
	id, ok := h.ParamID(c, "id", "allocation")
	if !ok {
		return
	}

	var req appcosting.DiscardIndirectRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	allocation, err := h.service.Discard(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocation)
}

// Summary godoc
// @ID           summarizeIndirectCosts
//
//	@Summary		Total the applied allocations of a period
//	@Tags			indirect-costs
//	@Produce		json
//	@Param			period_start	query		string		true	"First day"	format(date)
//	@Param			period_end		query		string		true	"Last day"	format(date)
//	@Param			lot_id			query		[]string	false	"Lots"		collectionFormat(multi)
//	@Success		200				{object}	APIResponse[costing.IndirectCostSummary]
//	@Failure		404				{object}	ErrorResponse	"Nothing applied in the period"
//	@Router			/costing/indirect/summary [get]
func (h *IndirectCostHandler) Summary(c *gin.Context) {
	var req appcosting.IndirectSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	for _, raw := range c.QueryArray("lot_id") {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.InvalidParam(c, "Invalid lot ID "+raw)
			return
		}
		req.LotIDs = append(req.LotIDs, id)
	}

	summary, err := h.service.Summary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
