package dto

import (
	"telstock/internal/core/apperror"
	"telstock/internal/core/types"
	"telstock/internal/domain/inventory"
)

// RegisterImeiRequest registers a single IMEI.
type RegisterImeiRequest struct {
	Imei         string  `json:"imei" binding:"required"`
	ProductID    string  `json:"productId" binding:"required"`
	Capacity     string  `json:"capacity"`
	SellingPrice float64 `json:"sellingPrice" binding:"min=0"`
	CommissionFo float64 `json:"commissionFo" binding:"min=0"`
	CommissionTl float64 `json:"commissionTl" binding:"min=0"`
	CommissionRm float64 `json:"commissionRm" binding:"min=0"`
	Source       string  `json:"source" binding:"required"`
}

// ToIMEI converts the request into a domain record.
func (r *RegisterImeiRequest) ToIMEI() (*inventory.IMEI, error) {
	productID, err := ParseID(r.ProductID, "productId")
	if err != nil {
		return nil, err
	}
	return &inventory.IMEI{
		Number:       r.Imei,
		ProductID:    productID,
		Capacity:     r.Capacity,
		SellingPrice: types.FromMoney(types.NewMoney(r.SellingPrice)),
		CommissionFO: types.NewMoney(r.CommissionFo),
		CommissionTL: types.NewMoney(r.CommissionTl),
		CommissionRM: types.NewMoney(r.CommissionRm),
		Source:       inventory.SourceCompany(r.Source),
	}, nil
}

// BulkRegisterRequest registers a batch of IMEIs.
type BulkRegisterRequest struct {
	Items []RegisterImeiRequest `json:"items" binding:"required,min=1,max=1000,dive"`
}

// Status change actions.
const (
	ActionLock     = "lock"
	ActionUnlock   = "unlock"
	ActionMarkLost = "mark_lost"
)

// UpdateStatusRequest changes an IMEI's lifecycle state.
type UpdateStatusRequest struct {
	Action string `json:"action" binding:"required,oneof=lock unlock mark_lost"`
}

// ListImeisQuery filters the IMEI list.
type ListImeisQuery struct {
	Pagination
	Status    string `form:"status"`
	OwnerID   string `form:"ownerId"`
	ProductID string `form:"productId"`
	Search    string `form:"search"`
}

// ToFilter converts query parameters into a repository filter.
func (q *ListImeisQuery) ToFilter() (inventory.Filter, error) {
	q.Defaults()
	f := inventory.Filter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Status != "" {
		status := inventory.Status(q.Status)
		if !status.Valid() {
			return f, apperror.NewValidation("unknown status").WithDetail("field", "status")
		}
		f.Status = &status
	}
	if q.OwnerID != "" {
		ownerID, err := ParseID(q.OwnerID, "ownerId")
		if err != nil {
			return f, err
		}
		f.OwnerID = &ownerID
	}
	if q.ProductID != "" {
		productID, err := ParseID(q.ProductID, "productId")
		if err != nil {
			return f, err
		}
		f.ProductID = &productID
	}
	return f, nil
}
