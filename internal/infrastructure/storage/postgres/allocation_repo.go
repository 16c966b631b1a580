package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"telstock/internal/domain/allocation"
)

const ledgerTable = "allocation_ledger"

var ledgerColumns = []string{
	"id", "reference", "imei", "accessory_id", "quantity",
	"from_user_id", "to_user_id", "level", "event_type", "status",
	"notes", "created_at", "completed_at",
}

// AllocationRepo implements allocation.Repository. The ledger is
// append-only; no update or delete statements exist here.
type AllocationRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewAllocationRepo creates a new ledger repository.
func NewAllocationRepo(txm *TxManager) *AllocationRepo {
	return &AllocationRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AllocationRepo) Create(ctx context.Context, e *allocation.LedgerEntry) error {
	sql, args, err := r.builder.Insert(ledgerTable).
		Columns(ledgerColumns...).
		Values(e.ID, e.Reference, e.Imei, e.AccessoryID, e.Quantity,
			e.FromUserID, e.ToUserID, e.Level, e.EventType, e.Status,
			e.Notes, e.CreatedAt, e.CompletedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *AllocationRepo) ListByImei(ctx context.Context, imei string) ([]*allocation.LedgerEntry, error) {
	sql, args, err := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"imei": imei}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var entries []*allocation.LedgerEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	return entries, nil
}

func (r *AllocationRepo) List(ctx context.Context, f allocation.Filter) ([]*allocation.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		OrderBy("created_at DESC")
	q = applyLedgerFilter(q, f)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var entries []*allocation.LedgerEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	return entries, nil
}

func (r *AllocationRepo) Count(ctx context.Context, f allocation.Filter) (int64, error) {
	q := r.builder.Select("COUNT(*)").From(ledgerTable)
	q = applyLedgerFilter(q, f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return total, nil
}

func applyLedgerFilter(q squirrel.SelectBuilder, f allocation.Filter) squirrel.SelectBuilder {
	if f.Imei != "" {
		q = q.Where(squirrel.Eq{"imei": f.Imei})
	}
	if f.UserID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_user_id": *f.UserID},
			squirrel.Eq{"to_user_id": *f.UserID},
		})
	}
	if f.EventType != nil {
		q = q.Where(squirrel.Eq{"event_type": *f.EventType})
	}
	return q
}
