// Package inventory provides the IMEI record: one phone, one unique 15-digit
// identifier, one current status and holder. The allocation engine moves
// custody; this package owns registration, status transitions and the stock
// views derived from ownership.
package inventory

import (
	"context"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/types"
	"telstock/internal/domain/hierarchy"
)

// Status is the lifecycle state of an IMEI.
type Status string

const (
	StatusInStock   Status = "in_stock"
	StatusAllocated Status = "allocated"
	StatusSold      Status = "sold"
	StatusLocked    Status = "locked"
	StatusLost      Status = "lost"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusAllocated, StatusSold, StatusLocked, StatusLost:
		return true
	}
	return false
}

// SourceCompany is the supply channel a unit was registered from.
type SourceCompany string

const (
	SourceDirect      SourceCompany = "direct_import"
	SourceDistributor SourceCompany = "local_distributor"
	SourceCarrier     SourceCompany = "carrier"
	SourceRefurbished SourceCompany = "refurbished"
)

// Valid reports whether c is a known source company.
func (c SourceCompany) Valid() bool {
	switch c {
	case SourceDirect, SourceDistributor, SourceCarrier, SourceRefurbished:
		return true
	}
	return false
}

// IMEI is the canonical inventory unit.
type IMEI struct {
	ID id.ID `db:"id" json:"id"`

	// Number is the 15-digit identity, globally unique
	Number string `db:"imei" json:"imei"`

	ProductID id.ID  `db:"product_id" json:"productId"`
	Capacity  string `db:"capacity" json:"capacity,omitempty"`

	SellingPrice types.MinorUnits `db:"selling_price" json:"sellingPrice"`

	// Three-way commission split paid out when the unit is sold
	CommissionFO types.Money `db:"commission_fo" json:"commissionFo"`
	CommissionTL types.Money `db:"commission_tl" json:"commissionTl"`
	CommissionRM types.Money `db:"commission_rm" json:"commissionRm"`

	Source SourceCompany `db:"source" json:"source"`
	Status Status        `db:"status" json:"status"`

	// CurrentOwnerID nil means unallocated, held at the top of the hierarchy
	CurrentOwnerID   *id.ID         `db:"current_owner_id" json:"currentOwnerId,omitempty"`
	CurrentOwnerRole hierarchy.Role `db:"current_owner_role" json:"currentOwnerRole,omitempty"`

	RegisteredAt time.Time  `db:"registered_at" json:"registeredAt"`
	AllocatedAt  *time.Time `db:"allocated_at" json:"allocatedAt,omitempty"`
	SoldAt       *time.Time `db:"sold_at" json:"soldAt,omitempty"`
	SoldBy       *id.ID     `db:"sold_by" json:"soldBy,omitempty"`

	// Version guards owner/status updates against concurrent writers
	Version int64 `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks registration input.
func (m *IMEI) Validate(ctx context.Context) error {
	if !ValidNumber(m.Number) {
		return apperror.NewValidation("IMEI must be a 15-digit number").
			WithDetail("field", "imei").
			WithDetail("value", m.Number)
	}
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if m.SellingPrice < 0 {
		return apperror.NewValidation("selling price cannot be negative").
			WithDetail("field", "sellingPrice")
	}
	if m.CommissionFO.IsNegative() || m.CommissionTL.IsNegative() || m.CommissionRM.IsNegative() {
		return apperror.NewValidation("commission amounts cannot be negative")
	}
	if !m.Source.Valid() {
		return apperror.NewValidation("unknown source company").
			WithDetail("field", "source").
			WithDetail("value", string(m.Source))
	}
	return nil
}

// ValidNumber reports whether s is a well-formed 15-digit IMEI.
func ValidNumber(s string) bool {
	if len(s) != 15 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Transferable reports whether the unit may change hands. Sold is terminal;
// locked and lost units are frozen until unlocked or recovered.
func (m *IMEI) Transferable() bool {
	switch m.Status {
	case StatusSold, StatusLocked, StatusLost:
		return false
	}
	return true
}

// HeldBy reports whether userID is the current holder.
func (m *IMEI) HeldBy(userID id.ID) bool {
	return m.CurrentOwnerID != nil && *m.CurrentOwnerID == userID
}
