package dto

import (
	"telstock/internal/core/types"
	"telstock/internal/domain/catalogs/accessory"
)

// CreateAccessoryRequest creates an accessory catalog item.
type CreateAccessoryRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"min=0"`
}

// ToAccessory converts the request into a catalog item.
func (r *CreateAccessoryRequest) ToAccessory() *accessory.Accessory {
	return &accessory.Accessory{
		Name:  r.Name,
		Price: types.FromMoney(types.NewMoney(r.Price)),
	}
}

// AllocateAccessoryRequest moves accessory quantity to a recipient.
type AllocateAccessoryRequest struct {
	AccessoryID string `json:"accessoryId" binding:"required"`
	ToUserID    string `json:"toUserId" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
	Notes       string `json:"notes"`
}

// RecallAccessoryRequest pulls accessory quantity back from a holder.
type RecallAccessoryRequest struct {
	AccessoryID string `json:"accessoryId" binding:"required"`
	FromUserID  string `json:"fromUserId" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
	Reason      string `json:"reason"`
}
