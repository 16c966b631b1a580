package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/allocation"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/internal/domain/journey"
	"telstock/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves IMEI registration, status management, stock
// views and the journey timeline.
type InventoryHandler struct {
	*BaseHandler
	inventory *inventory.Service
	engine    *allocation.Engine
	users     *hierarchy.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, inv *inventory.Service, engine *allocation.Engine, users *hierarchy.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, inventory: inv, engine: engine, users: users}
}

// Register records a single IMEI into stock.
// POST /api/v1/inventory/imeis
func (h *InventoryHandler) Register(c *gin.Context) {
	var req dto.RegisterImeiRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := req.ToIMEI()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.inventory.Register(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// BulkRegister records a batch of IMEIs, reporting per-item failures.
// POST /api/v1/inventory/imeis/bulk
func (h *InventoryHandler) BulkRegister(c *gin.Context) {
	var req dto.BulkRegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]*inventory.IMEI, 0, len(req.Items))
	for _, it := range req.Items {
		m, err := it.ToIMEI()
		if err != nil {
			h.Error(c, err)
			return
		}
		items = append(items, m)
	}

	result, err := h.inventory.BulkRegister(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// List returns IMEIs matching the filter.
// GET /api/v1/inventory/imeis
func (h *InventoryHandler) List(c *gin.Context) {
	var q dto.ListImeisQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.inventory.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListData{Items: items, TotalCount: total, Limit: f.Limit, Offset: f.Offset})
}

// Get returns one IMEI by its number.
// GET /api/v1/inventory/imeis/:imei
func (h *InventoryHandler) Get(c *gin.Context) {
	m, err := h.inventory.Get(c.Request.Context(), c.Param("imei"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// UpdateStatus locks, unlocks or marks an IMEI lost.
// PATCH /api/v1/inventory/imeis/:imei/status
func (h *InventoryHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	number := c.Param("imei")

	var m *inventory.IMEI
	var err error
	switch req.Action {
	case dto.ActionLock:
		m, err = h.inventory.Lock(ctx, number)
	case dto.ActionUnlock:
		m, err = h.inventory.Unlock(ctx, number)
	case dto.ActionMarkLost:
		m, err = h.inventory.MarkLost(ctx, number)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// MyStock returns the units the acting user currently holds. Admins
// additionally see the unallocated pool.
// GET /api/v1/inventory/my-stock
func (h *InventoryHandler) MyStock(c *gin.Context) {
	actorID, role, ok := h.Actor(c)
	if !ok {
		return
	}

	items, err := h.inventory.MyStock(c.Request.Context(), actorID, role)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Journey reconstructs the custody timeline of one unit from the ledger.
// GET /api/v1/inventory/imeis/:imei/journey
func (h *InventoryHandler) Journey(c *gin.Context) {
	ctx := c.Request.Context()
	number := c.Param("imei")

	unit, err := h.inventory.Get(ctx, number)
	if err != nil {
		h.Error(c, err)
		return
	}
	entries, err := h.engine.EntriesForImei(ctx, number)
	if err != nil {
		h.Error(c, err)
		return
	}
	users, err := h.users.Snapshot(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, journey.Build(unit, entries, users))
}
