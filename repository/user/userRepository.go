package userrepo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	IDsByRole(ctx context.Context, role model.Role) ([]int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(email, password_hash, user_name, company_id, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.UserName, u.CompanyID, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.GetContext(ctx, u, `
		SELECT id, email, password_hash, user_name, company_id, role, active_at, deleted, created_at
		FROM users
		WHERE lower(email) = lower($1)
		AND NOT deleted`,
		email,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.GetContext(ctx, u, `
		SELECT id, email, password_hash, user_name, company_id, role, active_at, deleted, created_at
		FROM users
		WHERE id = $1
		AND NOT deleted`,
		id,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET user_name = $2 WHERE id = $1 AND NOT deleted`, id, name)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1 AND NOT deleted`, id, passwordHash)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) IDsByRole(ctx context.Context, role model.Role) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE role = $1 AND NOT deleted ORDER BY id`, role)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

