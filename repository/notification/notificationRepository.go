package notificationrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	InsertBatch(ctx context.Context, ns []model.Notification) error
	ListByUser(ctx context.Context, userID int64, page, size int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	SoftDelete(ctx context.Context, userID, id int64) error
	LatestCreatedAtByType(ctx context.Context, typ model.NotificationType) (*time.Time, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `
	INSERT INTO notifications (user_id, type, content, ref_id, status)
	VALUES ($1, $2, $3, $4, 'UNREAD')
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, n.UserID, n.Type, n.Content, n.RefID).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *repo) InsertBatch(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	const ins = `
	INSERT INTO notifications (user_id, type, content, ref_id, status)
	VALUES ($1, $2, $3, $4, 'UNREAD')`
	for _, n := range ns {
		if _, err = tx.ExecContext(ctx, ins, n.UserID, n.Type, n.Content, n.RefID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repo) ListByUser(ctx context.Context, userID int64, page, size int) ([]model.Notification, error) {
	const q = `
	SELECT id, user_id, type, content, ref_id, status, created_at
	FROM notifications
	WHERE user_id = $1
	AND status <> 'DELETED'
	ORDER BY created_at DESC, id DESC
	LIMIT $2 OFFSET $3`
	var out []model.Notification
	if err := r.db.SelectContext(ctx, &out, q, userID, size, page*size); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) MarkRead(ctx context.Context, userID, id int64) error {
	const q = `
	UPDATE notifications
	SET status = 'READ'
	WHERE id = $1
	AND user_id = $2
	AND status = 'UNREAD'`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SoftDelete(ctx context.Context, userID, id int64) error {
	const q = `
	UPDATE notifications
	SET status = 'DELETED'
	WHERE id = $1
	AND user_id = $2
	AND status <> 'DELETED'`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) LatestCreatedAtByType(ctx context.Context, typ model.NotificationType) (*time.Time, error) {
	const q = `
	SELECT created_at
	FROM notifications
	WHERE type = $1
	ORDER BY created_at DESC
	LIMIT 1`
	var at time.Time
	if err := r.db.QueryRowContext(ctx, q, typ).Scan(&at); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &at, nil
}
