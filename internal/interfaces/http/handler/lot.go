package handler

import (
	appcosting "github.com/feedlot/backend/internal/application/costing"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/gin-gonic/gin"
)

// LotHandler handles lot and pen registration endpoints
type LotHandler struct {
	BaseHandler
	service *appcosting.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(service *appcosting.LotService) *LotHandler {
	return &LotHandler{
		service: service,
	}
}

// ListLotsQuery filters the lot list; no status returns every lot
type ListLotsQuery struct {
	Status []string `form:"status" binding:"dive,oneof=active sold slaughtered"`
}

// CreateLot godoc
// @ID           createLot
//
//	@Summary		Register a lot
//	@Description	Register a purchased lot; a positive acquisition cost is posted to its ledger
//	@Tags			lots
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcosting.CreateLotRequest	true	"Lot registration"
//	@Success		201		{object}	APIResponse[livestock.Lot]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/lots [post]
func (h *LotHandler) CreateLot(c *gin.Context) {
	var req appcosting.CreateLotRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.CreateLot(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, lot)
}

// GetLot godoc
// @ID           getLot
//
//	@Summary		Get a lot
//	@Description	Get a lot with its cost ledger and active pen links
//	@Tags			lots
//	@Produce		json
//	@Param			id	path		string	true	"Lot ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appcosting.LotResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/lots/{id} [get]
func (h *LotHandler) GetLot(c *gin.Context) {
	lotID, ok := h.ParamID(c, "id", "lot")
	if !ok {
		return
	}

	resp, err := h.service.GetLot(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListLots godoc
// @ID           listLots
//
//	@Summary		List lots
//	@Tags			lots
//	@Produce		json
//	@Param			status	query		[]string	false	"Lot statuses"	collectionFormat(multi)
//	@Success		200		{object}	APIResponse[[]livestock.Lot]
//	@Router			/lots [get]
func (h *LotHandler) ListLots(c *gin.Context) {
	var query ListLotsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	statuses := make([]livestock.LotStatus, len(query.Status))
	for i, s := range query.Status {
		statuses[i] = livestock.LotStatus(s)
	}

	lots, err := h.service.ListLots(c.Request.Context(), statuses...)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, lots, len(lots))
}

// RecordSale godoc
// @ID           recordLotSale
//
//	@Summary		Record a lot sale
//	@Description	Close a lot with its realized sale and release its pens
//	@Tags			lots
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Lot ID"	format(uuid)
//	@Param			request	body		appcosting.RecordSaleRequest	true	"Sale"
//	@Success		200		{object}	APIResponse[livestock.Lot]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/lots/{id}/sale [post]
func (h *LotHandler) RecordSale(c *gin.Context) {
	lotID, ok := h.ParamID(c, "id", "lot")
	if !ok {
		return
	}

	var req appcosting.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.RecordSale(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lot)
}

// CreatePen godoc
// @ID           createPen
//
//	@Summary		Register a pen
//	@Tags			pens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcosting.CreatePenRequest	true	"Pen registration"
//	@Success		201		{object}	APIResponse[livestock.Pen]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/pens [post]
func (h *LotHandler) CreatePen(c *gin.Context) {
	var req appcosting.CreatePenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pen, err := h.service.CreatePen(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pen)
}

// GetPen godoc
// @ID           getPen
//
//	@Summary		Get a pen
//	@Tags			pens
//	@Produce		json
//	@Param			id	path		string	true	"Pen ID"	format(uuid)
//	@Success		200	{object}	APIResponse[livestock.Pen]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/pens/{id} [get]
func (h *LotHandler) GetPen(c *gin.Context) {
	penID, ok := h.ParamID(c, "id", "pen")
	if !ok {
		return
	}

	pen, err := h.service.GetPen(c.Request.Context(), penID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pen)
}
