package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"telstock/internal/core/apperror"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/sales"
	"telstock/internal/infrastructure/http/v1/dto"
	"telstock/internal/infrastructure/metrics"
)

// SaleHandler serves sale recording and commission summaries.
type SaleHandler struct {
	*BaseHandler
	sales   *sales.Service
	metrics *metrics.Metrics
}

// NewSaleHandler creates a new sale handler. m may be nil.
func NewSaleHandler(base *BaseHandler, salesSvc *sales.Service, m *metrics.Metrics) *SaleHandler {
	return &SaleHandler{BaseHandler: base, sales: salesSvc, metrics: m}
}

// Create records a customer sale of one IMEI held by the actor.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.sales.Sell(c.Request.Context(), actorID, req.Imei, req.CustomerName, req.CustomerPhone)
	if err != nil {
		h.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSale()
	}
	h.Created(c, sale)
}

// List returns sales matching the filter. Non-admins only see their
// own sales.
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	actorID, role, ok := h.Actor(c)
	if !ok {
		return
	}

	var q dto.ListSalesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	if role != hierarchy.RoleAdmin {
		f.SoldByID = &actorID
	}

	items, total, err := h.sales.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListData{Items: items, TotalCount: total, Limit: f.Limit, Offset: f.Offset})
}

// Commissions returns a commission summary for a period. Only admins
// may query another user's earnings.
// GET /api/v1/sales/commissions
func (h *SaleHandler) Commissions(c *gin.Context) {
	actorID, role, ok := h.Actor(c)
	if !ok {
		return
	}

	var q dto.CommissionsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	userID := actorID
	if q.UserID != "" {
		parsed, err := dto.ParseID(q.UserID, "userId")
		if err != nil {
			h.Error(c, err)
			return
		}
		if parsed != actorID && role != hierarchy.RoleAdmin {
			h.Error(c, apperror.NewForbidden("cannot view another user's commissions"))
			return
		}
		userID = parsed
	}

	from, to := commissionPeriod(q.From, q.To)
	summary, err := h.sales.Commissions(c.Request.Context(), userID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// commissionPeriod defaults to the current calendar month.
func commissionPeriod(from, to *time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	f := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	t := now
	if from != nil {
		f = *from
	}
	if to != nil {
		t = *to
	}
	return f, t
}
