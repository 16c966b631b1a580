package dto

import (
	"time"

	"telstock/internal/domain/sales"
)

// CreateSaleRequest records a customer sale of one IMEI.
type CreateSaleRequest struct {
	Imei          string `json:"imei" binding:"required"`
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerPhone string `json:"customerPhone"`
}

// ListSalesQuery filters the sales list.
type ListSalesQuery struct {
	Pagination
	SoldByID string     `form:"soldById"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// ToFilter converts query parameters into a sales filter.
func (q *ListSalesQuery) ToFilter() (sales.Filter, error) {
	q.Defaults()
	f := sales.Filter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.SoldByID != "" {
		soldByID, err := ParseID(q.SoldByID, "soldById")
		if err != nil {
			return f, err
		}
		f.SoldByID = &soldByID
	}
	return f, nil
}

// CommissionsQuery bounds a commission summary period.
type CommissionsQuery struct {
	UserID string     `form:"userId"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}
