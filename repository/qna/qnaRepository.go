package qnarepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, q *model.Qna) error
	ListByUser(ctx context.Context, userID int64) ([]model.Qna, error)
	ListAll(ctx context.Context, page, size int) ([]model.Qna, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, q *model.Qna) error {
	const ins = `
	INSERT INTO qnas (user_id, title, content)
	VALUES ($1, $2, $3)
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, ins, q.UserID, q.Title, q.Content).
		Scan(&q.ID, &q.CreatedAt)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Qna, error) {
	const q = `
	SELECT id, user_id, title, content, created_at
	FROM qnas
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC`
	var out []model.Qna
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ListAll(ctx context.Context, page, size int) ([]model.Qna, error) {
	const q = `
	SELECT id, user_id, title, content, created_at
	FROM qnas
	ORDER BY created_at DESC, id DESC
	LIMIT $1 OFFSET $2`
	var out []model.Qna
	if err := r.db.SelectContext(ctx, &out, q, size, page*size); err != nil {
		return nil, err
	}
	return out, nil
}
