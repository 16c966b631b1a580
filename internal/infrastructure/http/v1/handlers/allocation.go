package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/allocation"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/infrastructure/http/v1/dto"
	"telstock/internal/infrastructure/metrics"
)

// AllocationHandler serves stock transfers: allocations down the
// hierarchy and recalls back up.
type AllocationHandler struct {
	*BaseHandler
	engine  *allocation.Engine
	users   *hierarchy.Service
	metrics *metrics.Metrics
}

// NewAllocationHandler creates a new allocation handler. m may be nil.
func NewAllocationHandler(base *BaseHandler, engine *allocation.Engine, users *hierarchy.Service, m *metrics.Metrics) *AllocationHandler {
	return &AllocationHandler{BaseHandler: base, engine: engine, users: users, metrics: m}
}

func (h *AllocationHandler) observe(eventType allocation.EventType, n int) {
	if h.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		h.metrics.ObserveAllocation(string(eventType))
	}
}

// Allocate transfers one IMEI to an eligible recipient.
// POST /api/v1/allocations
func (h *AllocationHandler) Allocate(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	toUserID, err := dto.ParseID(req.ToUserID, "toUserId")
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.engine.Allocate(c.Request.Context(), actorID, req.Imei, toUserID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.observe(allocation.EventAllocation, 1)
	h.Created(c, entry)
}

// BulkAllocate transfers a batch of IMEIs to one recipient, reporting
// per-item failures.
// POST /api/v1/allocations/bulk
func (h *AllocationHandler) BulkAllocate(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.BulkAllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	toUserID, err := dto.ParseID(req.ToUserID, "toUserId")
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.BulkAllocate(c.Request.Context(), actorID, req.Imeis, toUserID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.observe(allocation.EventAllocation, len(result.Success))
	h.OK(c, result)
}

// Recall pulls one IMEI back from a subordinate.
// POST /api/v1/allocations/recall
func (h *AllocationHandler) Recall(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.RecallRequest
	if !h.BindJSON(c, &req) {
		return
	}
	fromUserID, err := dto.ParseID(req.FromUserID, "fromUserId")
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.engine.Recall(c.Request.Context(), actorID, req.Imei, fromUserID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.observe(allocation.EventRecall, 1)
	h.Created(c, entry)
}

// BulkRecall pulls a batch of IMEIs back, reporting per-item failures.
// POST /api/v1/allocations/recall/bulk
func (h *AllocationHandler) BulkRecall(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.BulkRecallRequest
	if !h.BindJSON(c, &req) {
		return
	}
	items, err := req.ToItems()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.BulkRecall(c.Request.Context(), actorID, items, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.observe(allocation.EventRecall, len(result.Success))
	h.OK(c, result)
}

// List returns ledger history matching the filter.
// GET /api/v1/allocations
func (h *AllocationHandler) List(c *gin.Context) {
	var q dto.ListAllocationsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, total, err := h.engine.History(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListData{Items: entries, TotalCount: total, Limit: f.Limit, Offset: f.Offset})
}

// EligibleRecipients returns the users the actor may allocate to.
// GET /api/v1/allocations/eligible-recipients
func (h *AllocationHandler) EligibleRecipients(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	recipients, err := h.users.EligibleRecipientsFor(c.Request.Context(), actorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, recipients)
}

// Recallable returns subordinates and the units recallable from each.
// GET /api/v1/allocations/recallable
func (h *AllocationHandler) Recallable(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	stock, err := h.engine.RecallableStock(c.Request.Context(), actorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stock)
}
