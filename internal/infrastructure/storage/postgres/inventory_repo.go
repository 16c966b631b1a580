package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/domain/inventory"
)

const imeisTable = "imeis"

var imeiColumns = []string{
	"id", "imei", "product_id", "capacity", "selling_price",
	"commission_fo", "commission_tl", "commission_rm",
	"source", "status", "current_owner_id", "current_owner_role",
	"registered_at", "allocated_at", "sold_at", "sold_by",
	"version", "created_at", "updated_at",
}

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txm     *TxManager
	batch   *BatchInserter
	builder squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new IMEI repository.
func NewInventoryRepo(txm *TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:     txm,
		batch:   NewBatchInserter(txm),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *InventoryRepo) Create(ctx context.Context, m *inventory.IMEI) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	sql, args, err := r.builder.Insert(imeisTable).
		Columns(imeiColumns...).
		Values(imeiValues(m)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert imei: %w", err)
	}
	return nil
}

// CreateBatch inserts records via COPY when inside a transaction, falling
// back to a multi-row INSERT otherwise.
func (r *InventoryRepo) CreateBatch(ctx context.Context, items []*inventory.IMEI) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for _, m := range items {
		m.CreatedAt = now
		m.UpdatedAt = now
	}

	if r.txm.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(items))
		for _, m := range items {
			rows = append(rows, imeiValues(m))
		}
		n, err := r.batch.CopyFromSlice(ctx, imeisTable, imeiColumns, rows)
		if err != nil {
			return 0, fmt.Errorf("copy imeis: %w", err)
		}
		return n, nil
	}

	q := r.builder.Insert(imeisTable).Columns(imeiColumns...)
	for _, m := range items {
		q = q.Values(imeiValues(m)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert imeis: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *InventoryRepo) GetByNumber(ctx context.Context, number string) (*inventory.IMEI, error) {
	return r.getOne(ctx, squirrel.Eq{"imei": number}, number)
}

func (r *InventoryRepo) GetByID(ctx context.Context, imeiID id.ID) (*inventory.IMEI, error) {
	return r.getOne(ctx, squirrel.Eq{"id": imeiID}, imeiID)
}

// Update writes mutable state guarded by the version column. A concurrent
// writer that got there first leaves zero matched rows, reported as
// CONCURRENT_MODIFICATION.
func (r *InventoryRepo) Update(ctx context.Context, m *inventory.IMEI) error {
	m.UpdatedAt = time.Now().UTC()

	sql, args, err := r.builder.Update(imeisTable).
		Set("status", m.Status).
		Set("current_owner_id", m.CurrentOwnerID).
		Set("current_owner_role", m.CurrentOwnerRole).
		Set("allocated_at", m.AllocatedAt).
		Set("sold_at", m.SoldAt).
		Set("sold_by", m.SoldBy).
		Set("version", m.Version+1).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID, "version": m.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update imei: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("imei", m.Number)
	}
	m.Version++
	return nil
}

func (r *InventoryRepo) List(ctx context.Context, f inventory.Filter) ([]*inventory.IMEI, error) {
	q := r.builder.Select(imeiColumns...).
		From(imeisTable).
		OrderBy("registered_at DESC")
	q = applyImeiFilter(q, f)

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

	var items []*inventory.IMEI
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select imeis: %w", err)
	}
	return items, nil
}

func (r *InventoryRepo) Count(ctx context.Context, f inventory.Filter) (int64, error) {
	q := r.builder.Select("COUNT(*)").From(imeisTable)
	q = applyImeiFilter(q, f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count imeis: %w", err)
	}
	return total, nil
}

func (r *InventoryRepo) ListOwnedBy(ctx context.Context, ownerID id.ID, exclude []inventory.Status) ([]*inventory.IMEI, error) {
	q := r.builder.Select(imeiColumns...).
		From(imeisTable).
		Where(squirrel.Eq{"current_owner_id": ownerID}).
		OrderBy("allocated_at DESC")
	if len(exclude) > 0 {
		q = q.Where(squirrel.NotEq{"status": exclude})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*inventory.IMEI
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select owned imeis: %w", err)
	}
	return items, nil
}

func (r *InventoryRepo) ListUnallocated(ctx context.Context) ([]*inventory.IMEI, error) {
	sql, args, err := r.builder.Select(imeiColumns...).
		From(imeisTable).
		Where(squirrel.Eq{"current_owner_id": nil}).
		Where(squirrel.Eq{"status": []inventory.Status{
			inventory.StatusInStock, inventory.StatusAllocated,
		}}).
		OrderBy("registered_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*inventory.IMEI
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select unallocated imeis: %w", err)
	}
	return items, nil
}

func (r *InventoryRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*inventory.IMEI, error) {
	sql, args, err := r.builder.Select(imeiColumns...).
		From(imeisTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var m inventory.IMEI
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("IMEI", key)
		}
		return nil, fmt.Errorf("get imei: %w", err)
	}
	return &m, nil
}

func applyImeiFilter(q squirrel.SelectBuilder, f inventory.Filter) squirrel.SelectBuilder {
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.OwnerID != nil {
		q = q.Where(squirrel.Eq{"current_owner_id": *f.OwnerID})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Search != "" {
		q = q.Where(squirrel.Like{"imei": "%" + f.Search + "%"})
	}
	return q
}

func imeiValues(m *inventory.IMEI) []any {
	return []any{
		m.ID, m.Number, m.ProductID, m.Capacity, m.SellingPrice,
		m.CommissionFO, m.CommissionTL, m.CommissionRM,
		m.Source, m.Status, m.CurrentOwnerID, m.CurrentOwnerRole,
		m.RegisteredAt, m.AllocatedAt, m.SoldAt, m.SoldBy,
		m.Version, m.CreatedAt, m.UpdatedAt,
	}
}
