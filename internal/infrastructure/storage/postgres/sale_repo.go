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
	"telstock/internal/domain/sales"
)

const salesTable = "sales"

var saleColumns = []string{
	"id", "reference", "imei", "product_id", "price",
	"commission_fo", "commission_tl", "commission_rm",
	"sold_by_id", "team_leader_id", "regional_manager_id",
	"customer_name", "customer_phone", "sold_at", "created_at",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SaleRepo) Create(ctx context.Context, s *sales.Sale) error {
	sql, args, err := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(s.ID, s.Reference, s.Imei, s.ProductID, s.Price,
			s.CommissionFO, s.CommissionTL, s.CommissionRM,
			s.SoldByID, s.TeamLeaderID, s.RegionalManagerID,
			s.CustomerName, s.CustomerPhone, s.SoldAt, s.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	sql, args, err := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var s sales.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("sale", saleID)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

func (r *SaleRepo) List(ctx context.Context, f sales.Filter) ([]*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		OrderBy("sold_at DESC")
	q = applySaleFilter(q, f)

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

	var items []*sales.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	return items, nil
}

func (r *SaleRepo) Count(ctx context.Context, f sales.Filter) (int64, error) {
	q := r.builder.Select("COUNT(*)").From(salesTable)
	q = applySaleFilter(q, f)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return total, nil
}

func (r *SaleRepo) ListByBeneficiary(ctx context.Context, userID id.ID, from, to time.Time) ([]*sales.Sale, error) {
	sql, args, err := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Or{
			squirrel.Eq{"sold_by_id": userID},
			squirrel.Eq{"team_leader_id": userID},
			squirrel.Eq{"regional_manager_id": userID},
		}).
		Where(squirrel.GtOrEq{"sold_at": from}).
		Where(squirrel.LtOrEq{"sold_at": to}).
		OrderBy("sold_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*sales.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select beneficiary sales: %w", err)
	}
	return items, nil
}

func applySaleFilter(q squirrel.SelectBuilder, f sales.Filter) squirrel.SelectBuilder {
	if f.SoldByID != nil {
		q = q.Where(squirrel.Eq{"sold_by_id": *f.SoldByID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"sold_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"sold_at": *f.To})
	}
	return q
}
