// Package sales records point-of-sale transactions and the three-way
// commission split paid out on each sold unit. Commission beneficiaries and
// amounts are snapshotted at sale time; later hierarchy changes never
// rewrite a past payout.
package sales

import (
	"time"

	"telstock/internal/core/id"
	"telstock/internal/core/types"
)

// Sale is one completed point-of-sale transaction.
type Sale struct {
	ID id.ID `db:"id" json:"id"`

	// Reference is the human-facing number, e.g. SAL-2026-00007
	Reference string `db:"reference" json:"reference"`

	Imei      string `db:"imei" json:"imei"`
	ProductID id.ID  `db:"product_id" json:"productId"`

	Price types.MinorUnits `db:"price" json:"price"`

	// Commission snapshot taken from the IMEI record at sale time
	CommissionFO types.Money `db:"commission_fo" json:"commissionFo"`
	CommissionTL types.Money `db:"commission_tl" json:"commissionTl"`
	CommissionRM types.Money `db:"commission_rm" json:"commissionRm"`

	// Beneficiaries resolved from the hierarchy at sale time
	SoldByID          id.ID  `db:"sold_by_id" json:"soldById"`
	TeamLeaderID      *id.ID `db:"team_leader_id" json:"teamLeaderId,omitempty"`
	RegionalManagerID *id.ID `db:"regional_manager_id" json:"regionalManagerId,omitempty"`

	CustomerName  string `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	SoldAt    time.Time `db:"sold_at" json:"soldAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CommissionSummary aggregates a user's commission earnings over a period.
type CommissionSummary struct {
	UserID id.ID `json:"userId"`

	SalesCount int `json:"salesCount"`

	AsFieldOfficer    types.Money `json:"asFieldOfficer"`
	AsTeamLeader      types.Money `json:"asTeamLeader"`
	AsRegionalManager types.Money `json:"asRegionalManager"`
	Total             types.Money `json:"total"`
}
