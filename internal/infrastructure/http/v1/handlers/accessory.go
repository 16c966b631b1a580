package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/core/apperror"
	"telstock/internal/domain/allocation"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/infrastructure/http/v1/dto"
)

// AccessoryHandler serves the accessory catalog and quantity-based
// accessory transfers.
type AccessoryHandler struct {
	*BaseHandler
	accessories *accessory.Service
	engine      *allocation.Engine
}

// NewAccessoryHandler creates a new accessory handler.
func NewAccessoryHandler(base *BaseHandler, accessories *accessory.Service, engine *allocation.Engine) *AccessoryHandler {
	return &AccessoryHandler{BaseHandler: base, accessories: accessories, engine: engine}
}

// Create adds an accessory catalog item.
// POST /api/v1/catalog/accessories
func (h *AccessoryHandler) Create(c *gin.Context) {
	var req dto.CreateAccessoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a := req.ToAccessory()
	if err := h.accessories.Create(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, a)
}

// List returns accessory catalog items.
// GET /api/v1/catalog/accessories
func (h *AccessoryHandler) List(c *gin.Context) {
	onlyActive := c.Query("onlyActive") == "true"

	items, err := h.accessories.List(c.Request.Context(), onlyActive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Allocate moves accessory quantity to an eligible recipient.
// POST /api/v1/accessories/allocations
func (h *AccessoryHandler) Allocate(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.AllocateAccessoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accessoryID, err := dto.ParseID(req.AccessoryID, "accessoryId")
	if err != nil {
		h.Error(c, err)
		return
	}
	toUserID, err := dto.ParseID(req.ToUserID, "toUserId")
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.engine.AllocateAccessory(c.Request.Context(), actorID, accessoryID, toUserID, req.Quantity, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// Recall pulls accessory quantity back from a subordinate.
// POST /api/v1/accessories/recalls
func (h *AccessoryHandler) Recall(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.RecallAccessoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accessoryID, err := dto.ParseID(req.AccessoryID, "accessoryId")
	if err != nil {
		h.Error(c, err)
		return
	}
	fromUserID, err := dto.ParseID(req.FromUserID, "fromUserId")
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.engine.RecallAccessory(c.Request.Context(), actorID, accessoryID, fromUserID, req.Quantity, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// Stock returns accessory balances. Non-admins see their own balances;
// admins may pass holderId or pool=true for the unallocated pool.
// GET /api/v1/accessories/stock
func (h *AccessoryHandler) Stock(c *gin.Context) {
	actorID, role, ok := h.Actor(c)
	if !ok {
		return
	}

	holderID := &actorID
	if role == hierarchy.RoleAdmin {
		switch {
		case c.Query("pool") == "true":
			holderID = nil
		case c.Query("holderId") != "":
			parsed, err := dto.ParseID(c.Query("holderId"), "holderId")
			if err != nil {
				h.Error(c, err)
				return
			}
			holderID = &parsed
		}
	} else if c.Query("holderId") != "" || c.Query("pool") != "" {
		h.Error(c, apperror.NewForbidden("cannot view another holder's stock"))
		return
	}

	balances, err := h.accessories.StockOf(c.Request.Context(), holderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, balances)
}
