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
	"telstock/internal/domain/catalogs/accessory"
)

const (
	accessoriesTable       = "accessories"
	accessoryBalancesTable = "accessory_balances"
)

var accessoryColumns = []string{
	"id", "name", "price", "is_active", "created_at", "updated_at",
}

// AccessoryRepo implements accessory.Repository and
// accessory.BalanceRepository.
type AccessoryRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewAccessoryRepo creates a new accessory repository.
func NewAccessoryRepo(txm *TxManager) *AccessoryRepo {
	return &AccessoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AccessoryRepo) Create(ctx context.Context, a *accessory.Accessory) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	sql, args, err := r.builder.Insert(accessoriesTable).
		Columns(accessoryColumns...).
		Values(a.ID, a.Name, a.Price, a.IsActive, a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert accessory: %w", err)
	}
	return nil
}

func (r *AccessoryRepo) Update(ctx context.Context, a *accessory.Accessory) error {
	a.UpdatedAt = time.Now().UTC()

	sql, args, err := r.builder.Update(accessoriesTable).
		Set("name", a.Name).
		Set("price", a.Price).
		Set("is_active", a.IsActive).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update accessory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("accessory", a.ID)
	}
	return nil
}

func (r *AccessoryRepo) GetByID(ctx context.Context, accessoryID id.ID) (*accessory.Accessory, error) {
	sql, args, err := r.builder.Select(accessoryColumns...).
		From(accessoriesTable).
		Where(squirrel.Eq{"id": accessoryID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var a accessory.Accessory
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("accessory", accessoryID)
		}
		return nil, fmt.Errorf("get accessory: %w", err)
	}
	return &a, nil
}

func (r *AccessoryRepo) List(ctx context.Context, onlyActive bool) ([]*accessory.Accessory, error) {
	q := r.builder.Select(accessoryColumns...).
		From(accessoriesTable).
		OrderBy("name")
	if onlyActive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*accessory.Accessory
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select accessories: %w", err)
	}
	return items, nil
}

// --- balances ---

// GetForUpdate reads a balance under FOR UPDATE so concurrent transfers of
// the same balance serialize. A missing row reads as zero.
func (r *AccessoryRepo) GetForUpdate(ctx context.Context, accessoryID id.ID, holderID *id.ID) (int64, error) {
	q := r.builder.Select("quantity").
		From(accessoryBalancesTable).
		Where(squirrel.Eq{"accessory_id": accessoryID}).
		Suffix("FOR UPDATE")
	if holderID != nil {
		q = q.Where(squirrel.Eq{"holder_id": *holderID})
	} else {
		q = q.Where(squirrel.Eq{"holder_id": nil})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var quantity int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return quantity, nil
}

// Adjust adds delta to a balance, creating the row when absent. The table's
// CHECK (quantity >= 0) rejects any write that would go negative.
func (r *AccessoryRepo) Adjust(ctx context.Context, accessoryID id.ID, holderID *id.ID, delta int64) error {
	sql := `
		INSERT INTO accessory_balances (accessory_id, holder_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (accessory_id, holder_id_key)
		DO UPDATE SET
			quantity = accessory_balances.quantity + EXCLUDED.quantity,
			updated_at = NOW()
	`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, accessoryID, holderID, delta); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}

func (r *AccessoryRepo) ListByHolder(ctx context.Context, holderID *id.ID) ([]*accessory.Balance, error) {
	q := r.builder.Select("accessory_id", "holder_id", "quantity", "updated_at").
		From(accessoryBalancesTable).
		Where(squirrel.Gt{"quantity": 0}).
		OrderBy("accessory_id")
	if holderID != nil {
		q = q.Where(squirrel.Eq{"holder_id": *holderID})
	} else {
		q = q.Where(squirrel.Eq{"holder_id": nil})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var balances []*accessory.Balance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	return balances, nil
}
