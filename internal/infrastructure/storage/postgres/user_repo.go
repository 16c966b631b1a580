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
	"telstock/internal/domain/hierarchy"
)

const usersTable = "users"

var userColumns = []string{
	"id", "name", "email", "role", "region",
	"regional_manager_id", "team_leader_id", "password_hash",
	"is_active", "created_at", "updated_at",
}

// UserRepo implements hierarchy.Repository.
type UserRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *UserRepo) Create(ctx context.Context, u *hierarchy.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	sql, args, err := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.Role, u.Region,
			u.RegionalManagerID, u.TeamLeaderID, u.PasswordHash,
			u.IsActive, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *hierarchy.User) error {
	u.UpdatedAt = time.Now().UTC()

	sql, args, err := r.builder.Update(usersTable).
		Set("name", u.Name).
		Set("email", u.Email).
		Set("region", u.Region).
		Set("regional_manager_id", u.RegionalManagerID).
		Set("team_leader_id", u.TeamLeaderID).
		Set("is_active", u.IsActive).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", u.ID)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*hierarchy.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*hierarchy.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) List(ctx context.Context, role *hierarchy.Role) ([]*hierarchy.User, error) {
	q := r.builder.Select(userColumns...).
		From(usersTable).
		OrderBy("created_at")
	if role != nil {
		q = q.Where(squirrel.Eq{"role": *role})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var users []*hierarchy.User
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*hierarchy.User, error) {
	sql, args, err := r.builder.Select(userColumns...).
		From(usersTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var u hierarchy.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
