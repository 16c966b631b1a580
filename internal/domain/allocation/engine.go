package allocation

import (
	"context"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/tx"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/pkg/logger"
)

// Reference prefixes for ledger entry numbers.
const (
	prefixAllocation = "ALC"
	prefixRecall     = "RCL"
)

// BulkResult reports per-item outcome of a bulk allocate or recall.
// Each item runs in its own transaction: a failed item rolls back as a unit
// and never leaves partial state.
type BulkResult struct {
	Success []string    `json:"success"`
	Failed  []ItemError `json:"failed"`
}

// ItemError pairs an IMEI with the reason its transfer was refused.
type ItemError struct {
	Imei  string `json:"imei"`
	Error string `json:"error"`
}

// RecallItem addresses one unit of a bulk recall.
type RecallItem struct {
	Imei       string `json:"imei"`
	FromUserID id.ID  `json:"fromUserId"`
}

// HolderStock is one subordinate and the units recallable from them.
type HolderStock struct {
	User  *hierarchy.User   `json:"user"`
	Imeis []*inventory.IMEI `json:"imeis"`
}

// AuditWriter records transfers for the audit trail.
type AuditWriter interface {
	Record(ctx context.Context, action, entity string, entityID id.ID, payload any) error
}

// Engine validates and executes allocations and recalls. Every transfer is
// one database transaction: the ledger insert and the IMEI owner/status
// update commit or roll back together.
type Engine struct {
	ledger    Repository
	inventory inventory.Repository
	users     *hierarchy.Service
	balances  accessory.BalanceRepository
	txm       tx.Manager
	refs      ReferenceGenerator
	audit     AuditWriter
}

// NewEngine creates the allocation engine. audit may be nil.
func NewEngine(
	ledger Repository,
	inv inventory.Repository,
	users *hierarchy.Service,
	balances accessory.BalanceRepository,
	txm tx.Manager,
	refs ReferenceGenerator,
	audit AuditWriter,
) *Engine {
	return &Engine{
		ledger:    ledger,
		inventory: inv,
		users:     users,
		balances:  balances,
		txm:       txm,
		refs:      refs,
		audit:     audit,
	}
}

// Allocate transfers one unit from the acting user to a recipient one tier
// down. The recipient must be in the actor's eligible set; the unit must be
// transferable and held by the actor (or unallocated, for admin).
func (e *Engine) Allocate(ctx context.Context, actorID id.ID, imei string, toUserID id.ID, notes string) (*LedgerEntry, error) {
	actor, recipient, err := e.resolveRecipient(ctx, actorID, toUserID)
	if err != nil {
		return nil, err
	}

	var entry *LedgerEntry
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		unit, err := e.inventory.GetByNumber(ctx, imei)
		if err != nil {
			return err
		}
		if !unit.Transferable() {
			return apperror.NewImeiNotAvailable(unit.Number, string(unit.Status))
		}
		if !e.mayIssue(actor, unit) {
			return apperror.NewNotStockHolder(unit.Number)
		}

		ref, err := e.refs.Next(ctx, prefixAllocation)
		if err != nil {
			return err
		}

		fromID := fromOrPool(actor, unit)

		now := time.Now().UTC()
		unit.Status = inventory.StatusAllocated
		unit.CurrentOwnerID = &recipient.ID
		unit.CurrentOwnerRole = recipient.Role
		unit.AllocatedAt = &now
		if err := e.inventory.Update(ctx, unit); err != nil {
			return err
		}

		entry = &LedgerEntry{
			ID:          id.New(),
			Reference:   ref,
			Imei:        unit.Number,
			FromUserID:  fromID,
			ToUserID:    recipient.ID,
			Level:       recipient.Role,
			EventType:   EventAllocation,
			Status:      StatusCompleted,
			Notes:       notes,
			CreatedAt:   now,
			CompletedAt: &now,
		}
		if err := e.ledger.Create(ctx, entry); err != nil {
			return err
		}
		e.recordAudit(ctx, "stock.allocated", entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock allocated",
		"imei", imei, "to", toUserID, "level", entry.Level, "reference", entry.Reference)
	return entry, nil
}

// BulkAllocate allocates many units to one recipient, each in its own
// transaction, and reports per-item success and failure.
func (e *Engine) BulkAllocate(ctx context.Context, actorID id.ID, imeis []string, toUserID id.ID, notes string) (*BulkResult, error) {
	if len(imeis) == 0 {
		return nil, apperror.NewValidation("no IMEIs selected")
	}
	// Resolve eligibility once; it cannot change mid-batch from our side.
	if _, _, err := e.resolveRecipient(ctx, actorID, toUserID); err != nil {
		return nil, err
	}

	result := &BulkResult{Success: []string{}, Failed: []ItemError{}}
	for _, imei := range imeis {
		if _, err := e.Allocate(ctx, actorID, imei, toUserID, notes); err != nil {
			result.Failed = append(result.Failed, ItemError{Imei: imei, Error: errorMessage(err)})
			continue
		}
		result.Success = append(result.Success, imei)
	}
	return result, nil
}

// Recall reverses custody of one unit from a subordinate back to the acting
// user. The unit must be held by fromUserID, who must be in the actor's
// subordinate closure.
func (e *Engine) Recall(ctx context.Context, actorID id.ID, imei string, fromUserID id.ID, reason string) (*LedgerEntry, error) {
	actor, err := e.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	all, err := e.users.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !hierarchy.IsSubordinate(actor, fromUserID, all) {
		return nil, apperror.NewForbidden("you can only recall stock from your subordinates").
			WithDetail("from_user_id", fromUserID)
	}
	if reason == "" {
		reason = DefaultRecallReason
	}

	var entry *LedgerEntry
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		unit, err := e.inventory.GetByNumber(ctx, imei)
		if err != nil {
			return err
		}
		if !unit.Transferable() {
			return apperror.NewImeiNotAvailable(unit.Number, string(unit.Status))
		}
		if !unit.HeldBy(fromUserID) {
			return apperror.NewBusinessRule(apperror.CodeNotStockHolder,
				"This IMEI is not held by the selected user").
				WithDetail("imei", unit.Number)
		}

		ref, err := e.refs.Next(ctx, prefixRecall)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		unit.Status = inventory.StatusAllocated
		unit.CurrentOwnerID = &actor.ID
		unit.CurrentOwnerRole = actor.Role
		unit.AllocatedAt = &now
		if err := e.inventory.Update(ctx, unit); err != nil {
			return err
		}

		entry = &LedgerEntry{
			ID:          id.New(),
			Reference:   ref,
			Imei:        unit.Number,
			FromUserID:  &fromUserID,
			ToUserID:    actor.ID,
			Level:       actor.Role,
			EventType:   EventRecall,
			Status:      StatusCompleted,
			Notes:       reason,
			CreatedAt:   now,
			CompletedAt: &now,
		}
		if err := e.ledger.Create(ctx, entry); err != nil {
			return err
		}
		e.recordAudit(ctx, "stock.recalled", entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock recalled",
		"imei", imei, "from", fromUserID, "reference", entry.Reference)
	return entry, nil
}

// BulkRecall recalls many units, one ledger entry and one transaction per
// IMEI regardless of how the items group by source user.
func (e *Engine) BulkRecall(ctx context.Context, actorID id.ID, items []RecallItem, reason string) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("no items selected")
	}

	result := &BulkResult{Success: []string{}, Failed: []ItemError{}}
	for _, item := range items {
		if _, err := e.Recall(ctx, actorID, item.Imei, item.FromUserID, reason); err != nil {
			result.Failed = append(result.Failed, ItemError{Imei: item.Imei, Error: errorMessage(err)})
			continue
		}
		result.Success = append(result.Success, item.Imei)
	}
	return result, nil
}

// RecallableStock lists the actor's subordinates together with the units
// currently recallable from each. Subordinates holding nothing are omitted.
func (e *Engine) RecallableStock(ctx context.Context, actorID id.ID) ([]*HolderStock, error) {
	subs, err := e.users.SubordinatesOf(ctx, actorID)
	if err != nil {
		return nil, err
	}

	out := make([]*HolderStock, 0, len(subs))
	for _, sub := range subs {
		held, err := e.inventory.ListOwnedBy(ctx, sub.ID,
			[]inventory.Status{inventory.StatusSold, inventory.StatusLocked, inventory.StatusLost})
		if err != nil {
			return nil, err
		}
		if len(held) == 0 {
			continue
		}
		out = append(out, &HolderStock{User: sub, Imeis: held})
	}
	return out, nil
}

// History returns ledger entries matching the filter.
func (e *Engine) History(ctx context.Context, f Filter) ([]*LedgerEntry, int64, error) {
	entries, err := e.ledger.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := e.ledger.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// EntriesForImei returns the full ledger of one unit, oldest first.
func (e *Engine) EntriesForImei(ctx context.Context, imei string) ([]*LedgerEntry, error) {
	return e.ledger.ListByImei(ctx, imei)
}

// --- accessories ---

// AllocateAccessory transfers a quantity of a non-serialized accessory to an
// eligible recipient. Balances are checked under a row lock; the shared
// ledger records the movement.
func (e *Engine) AllocateAccessory(ctx context.Context, actorID id.ID, accessoryID id.ID, toUserID id.ID, quantity int64, notes string) (*LedgerEntry, error) {
	actor, recipient, err := e.resolveRecipient(ctx, actorID, toUserID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	var entry *LedgerEntry
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Everyone issues from their own balance. Admin may also draw
		// from the unallocated pool when their own balance cannot cover
		// the quantity, mirroring mayIssue for serialized units.
		source := &actor.ID
		available, err := e.balances.GetForUpdate(ctx, accessoryID, source)
		if err != nil {
			return err
		}
		if available < quantity && actor.Role == hierarchy.RoleAdmin {
			poolAvailable, err := e.balances.GetForUpdate(ctx, accessoryID, nil)
			if err != nil {
				return err
			}
			if poolAvailable > available {
				source = nil
				available = poolAvailable
			}
		}
		if available < quantity {
			return apperror.NewInsufficientStock(accessoryID.String(), quantity, available)
		}

		if err := e.balances.Adjust(ctx, accessoryID, source, -quantity); err != nil {
			return err
		}
		if err := e.balances.Adjust(ctx, accessoryID, &recipient.ID, quantity); err != nil {
			return err
		}

		ref, err := e.refs.Next(ctx, prefixAllocation)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		entry = &LedgerEntry{
			ID:          id.New(),
			Reference:   ref,
			AccessoryID: &accessoryID,
			Quantity:    quantity,
			FromUserID:  source,
			ToUserID:    recipient.ID,
			Level:       recipient.Role,
			EventType:   EventAllocation,
			Status:      StatusCompleted,
			Notes:       notes,
			CreatedAt:   now,
			CompletedAt: &now,
		}
		if err := e.ledger.Create(ctx, entry); err != nil {
			return err
		}
		e.recordAudit(ctx, "accessory.allocated", entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecallAccessory reverses an accessory quantity from a subordinate back to
// the acting user.
func (e *Engine) RecallAccessory(ctx context.Context, actorID id.ID, accessoryID id.ID, fromUserID id.ID, quantity int64, reason string) (*LedgerEntry, error) {
	actor, err := e.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	all, err := e.users.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !hierarchy.IsSubordinate(actor, fromUserID, all) {
		return nil, apperror.NewForbidden("you can only recall stock from your subordinates").
			WithDetail("from_user_id", fromUserID)
	}
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if reason == "" {
		reason = DefaultRecallReason
	}

	var entry *LedgerEntry
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		available, err := e.balances.GetForUpdate(ctx, accessoryID, &fromUserID)
		if err != nil {
			return err
		}
		if available < quantity {
			return apperror.NewInsufficientStock(accessoryID.String(), quantity, available)
		}

		if err := e.balances.Adjust(ctx, accessoryID, &fromUserID, -quantity); err != nil {
			return err
		}
		if err := e.balances.Adjust(ctx, accessoryID, &actor.ID, quantity); err != nil {
			return err
		}

		ref, err := e.refs.Next(ctx, prefixRecall)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		entry = &LedgerEntry{
			ID:          id.New(),
			Reference:   ref,
			AccessoryID: &accessoryID,
			Quantity:    quantity,
			FromUserID:  &fromUserID,
			ToUserID:    actor.ID,
			Level:       actor.Role,
			EventType:   EventRecall,
			Status:      StatusCompleted,
			Notes:       reason,
			CreatedAt:   now,
			CompletedAt: &now,
		}
		if err := e.ledger.Create(ctx, entry); err != nil {
			return err
		}
		e.recordAudit(ctx, "accessory.recalled", entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// --- helpers ---

func (e *Engine) resolveRecipient(ctx context.Context, actorID, toUserID id.ID) (*hierarchy.User, *hierarchy.User, error) {
	actor, err := e.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	eligible, err := e.users.EligibleRecipientsFor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range eligible {
		if u.ID == toUserID {
			return actor, u, nil
		}
	}
	return nil, nil, apperror.NewNotEligible(toUserID.String())
}

// mayIssue reports whether the actor may issue this unit: its current
// holder, or admin for the unallocated pool.
func (e *Engine) mayIssue(actor *hierarchy.User, unit *inventory.IMEI) bool {
	if unit.HeldBy(actor.ID) {
		return true
	}
	return unit.CurrentOwnerID == nil && actor.Role == hierarchy.RoleAdmin
}

// fromOrPool records the issuing side of an allocation entry; nil marks a
// draw from the unallocated pool.
func fromOrPool(actor *hierarchy.User, unit *inventory.IMEI) *id.ID {
	if unit.CurrentOwnerID == nil && actor.Role == hierarchy.RoleAdmin {
		return nil
	}
	actorID := actor.ID
	return &actorID
}

func (e *Engine) recordAudit(ctx context.Context, action string, entry *LedgerEntry) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, action, "allocation", entry.ID, entry); err != nil {
		logger.Warn(ctx, "audit write failed", "action", action, "error", err)
	}
}

func errorMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
