package handler

import (
	appcosting "github.com/feedlot/backend/internal/application/costing"
	"github.com/gin-gonic/gin"
)

// AllocationHandler handles cost allocation, pen occupancy and loss endpoints
type AllocationHandler struct {
	BaseHandler
	service *appcosting.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(service *appcosting.AllocationService) *AllocationHandler {
	return &AllocationHandler{
		service: service,
	}
}

// AllocateCost godoc
// @ID           allocateCost
//
//	@Summary		Allocate a pen cost
//	@Description	Split a cost across the lots in a pen by head count. An empty pen
//	@Description	leaves the origin unposted (posted=false) so it can be retried.
//	@Tags			costing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcosting.AllocateCostRequest	true	"Cost origin"
//	@Success		201		{object}	APIResponse[appcosting.AllocationResponse]
//	@Success		200		{object}	APIResponse[appcosting.AllocationResponse]
//	@Failure		409		{object}	ErrorResponse	"Origin already posted"
//	@Router			/costing/allocations [post]
func (h *AllocationHandler) AllocateCost(c *gin.Context) {
	var req appcosting.AllocateCostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.AllocateCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !resp.Posted {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// GetAllocation godoc
// @ID           getAllocation
//
//	@Summary		Get the records of a posted origin
//	@Tags			costing
//	@Produce		json
//	@Param			id	path		string	true	"Origin ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]costing.CostAllocationRecord]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/costing/allocations/{id} [get]
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	originID, ok := h.ParamID(c, "id", "origin")
	if !ok {
		return
	}

	records, err := h.service.GetAllocation(c.Request.Context(), originID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, records, len(records))
}

// AssignLotToPen godoc
// @ID           assignLotToPen
//
//	@Summary		Place animals of a lot in a pen
//	@Description	Capacity overruns are reported as warnings, not rejected
//	@Tags			costing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Lot ID"	format(uuid)
//	@Param			request	body		appcosting.AssignLotRequest	true	"Placement"
//	@Success		201		{object}	APIResponse[appcosting.AssignLotResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/costing/lots/{id}/pens [post]
func (h *AllocationHandler) AssignLotToPen(c *gin.Context) {
	lotID, ok := h.ParamID(c, "id", "lot")
	if !ok {
		return
	}

	var req appcosting.AssignLotRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.AssignLotToPen(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// RemoveLink godoc
// @ID           removePenLotLink
//
//	@Summary		Take a lot out of a pen
//	@Tags			costing
//	@Produce		json
//	@Param			id	path		string	true	"Link ID"	format(uuid)
//	@Success		200	{object}	APIResponse[livestock.PenLotLink]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/costing/links/{id} [delete]
func (h *AllocationHandler) RemoveLink(c *gin.Context) {
	linkID, ok := h.ParamID(c, "id", "link")
	if !ok {
		return
	}

	link, err := h.service.RemoveLink(c.Request.Context(), linkID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, link)
}

// RecordMortality godoc
// @ID           recordMortality
//
//	@Summary		Record dead animals
//	@Description	Value the dead heads at the lot's cost per entry head
//	@Tags			costing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Lot ID"	format(uuid)
//	@Param			request	body		appcosting.RecordMortalityRequest	true	"Mortality"
//	@Success		201		{object}	APIResponse[appcosting.LossResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/costing/lots/{id}/mortality [post]
func (h *AllocationHandler) RecordMortality(c *gin.Context) {
	lotID, ok := h.ParamID(c, "id", "lot")
	if !ok {
		return
	}

	var req appcosting.RecordMortalityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordMortality(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// RecordWeightLoss godoc
// @ID           recordWeightLoss
//
//	@Summary		Record weight below expectation
//	@Tags			costing
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Lot ID"	format(uuid)
//	@Param			request	body		appcosting.RecordWeightLossRequest	true	"Weight loss"
//	@Success		201		{object}	APIResponse[appcosting.LossResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/costing/lots/{id}/weight-loss [post]
func (h *AllocationHandler) RecordWeightLoss(c *gin.Context) {
	lotID, ok := h.ParamID(c, "id", "lot")
	if !ok {
		return
	}

	var req appcosting.RecordWeightLossRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordWeightLoss(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}
