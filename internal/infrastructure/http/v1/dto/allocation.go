package dto

import (
	"telstock/internal/domain/allocation"
)

// AllocateRequest moves one IMEI to a recipient.
type AllocateRequest struct {
	Imei     string `json:"imei" binding:"required"`
	ToUserID string `json:"toUserId" binding:"required"`
	Notes    string `json:"notes"`
}

// BulkAllocateRequest moves a batch of IMEIs to one recipient.
type BulkAllocateRequest struct {
	Imeis    []string `json:"imeis" binding:"required,min=1,max=500"`
	ToUserID string   `json:"toUserId" binding:"required"`
	Notes    string   `json:"notes"`
}

// RecallRequest pulls one IMEI back from a subordinate.
type RecallRequest struct {
	Imei       string `json:"imei" binding:"required"`
	FromUserID string `json:"fromUserId" binding:"required"`
	Reason     string `json:"reason"`
}

// RecallItemRequest is one unit in a bulk recall.
type RecallItemRequest struct {
	Imei       string `json:"imei" binding:"required"`
	FromUserID string `json:"fromUserId" binding:"required"`
}

// BulkRecallRequest pulls a batch of IMEIs back, possibly from
// different holders.
type BulkRecallRequest struct {
	Items  []RecallItemRequest `json:"items" binding:"required,min=1,max=500,dive"`
	Reason string              `json:"reason"`
}

// ToItems converts the request items into engine recall items.
func (r *BulkRecallRequest) ToItems() ([]allocation.RecallItem, error) {
	items := make([]allocation.RecallItem, 0, len(r.Items))
	for _, it := range r.Items {
		fromID, err := ParseID(it.FromUserID, "fromUserId")
		if err != nil {
			return nil, err
		}
		items = append(items, allocation.RecallItem{Imei: it.Imei, FromUserID: fromID})
	}
	return items, nil
}

// ListAllocationsQuery filters the ledger list.
type ListAllocationsQuery struct {
	Pagination
	Imei      string `form:"imei"`
	UserID    string `form:"userId"`
	EventType string `form:"eventType"`
}

// ToFilter converts query parameters into a ledger filter.
func (q *ListAllocationsQuery) ToFilter() (allocation.Filter, error) {
	q.Defaults()
	f := allocation.Filter{
		Imei:   q.Imei,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.UserID != "" {
		userID, err := ParseID(q.UserID, "userId")
		if err != nil {
			return f, err
		}
		f.UserID = &userID
	}
	if q.EventType != "" {
		et := allocation.EventType(q.EventType)
		f.EventType = &et
	}
	return f, nil
}
