// Package allocation provides the stock allocation ledger and the engines
// that move custody through the hierarchy: allocate (downward) and recall
// (upward reversal). The ledger is append-only; it is the source of truth
// for how every unit got where it is.
package allocation

import (
	"time"

	"telstock/internal/core/id"
	"telstock/internal/domain/hierarchy"
)

// EventType distinguishes forward allocations from recalls as a first-class
// field. Notes stay purely descriptive; nothing parses them.
type EventType string

const (
	EventAllocation EventType = "allocation"
	EventRecall     EventType = "recall"
)

// EntryStatus is the state of a ledger entry. Transfers complete at
// confirmation time, so completed is the only state the engines produce.
type EntryStatus string

const (
	StatusCompleted EntryStatus = "completed"
)

// DefaultRecallReason is recorded when a recall carries no free-text reason.
const DefaultRecallReason = "Stock recalled by superior"

// LedgerEntry is one directed transfer event. Phone entries carry an IMEI;
// accessory entries carry an accessory reference and a quantity instead.
// Entries are never updated or deleted.
type LedgerEntry struct {
	ID id.ID `db:"id" json:"id"`

	// Reference is the human-facing number, e.g. ALC-2026-00042
	Reference string `db:"reference" json:"reference"`

	Imei        string `db:"imei" json:"imei,omitempty"`
	AccessoryID *id.ID `db:"accessory_id" json:"accessoryId,omitempty"`
	Quantity    int64  `db:"quantity" json:"quantity,omitempty"`

	// FromUserID nil means the transfer drew from the unallocated pool
	FromUserID *id.ID `db:"from_user_id" json:"fromUserId,omitempty"`
	ToUserID   id.ID  `db:"to_user_id" json:"toUserId"`

	// Level is the hierarchy tier the transfer lands at
	Level hierarchy.Role `db:"level" json:"level"`

	EventType EventType   `db:"event_type" json:"eventType"`
	Status    EntryStatus `db:"status" json:"status"`
	Notes     string      `db:"notes" json:"notes,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// IsRecall reports whether the entry reverses a prior allocation.
func (e *LedgerEntry) IsRecall() bool {
	return e.EventType == EventRecall
}
