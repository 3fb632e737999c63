package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) (int64, error)
	List(ctx context.Context) ([]model.BookSummary, error)
	Detail(ctx context.Context, id int64) (*model.BookSummary, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	SoftDeleteItem(ctx context.Context, itemID int64) error

	ItemsByIDs(ctx context.Context, ids []int64) ([]model.ScannedItem, error)
	AvailableItemIDs(ctx context.Context) ([]int64, error)
	ShelfCategory(ctx context.Context, shelfID int64) (string, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (title, author, isbn, publisher, published_at, category, description, image)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Publisher, b.PublishedAt, b.Category, b.Description, b.Image,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) AddCopies(ctx context.Context, bookID int64, n int) (int64, error) {
	if n <= 0 {
		return 0, errors.New("n must be > 0")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	const ins = `INSERT INTO book_items (book_id, status) VALUES ($1,'AVAILABLE')`
	for i := 0; i < n; i++ {
		if _, err = tx.ExecContext(ctx, ins, bookID); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return int64(n), nil
}

func (r *repo) List(ctx context.Context) ([]model.BookSummary, error) {
	const q = `
	SELECT b.id, b.title, b.author, b.isbn, b.publisher, b.published_at,
		b.category, b.description, b.image, b.created_at,
		COUNT(bi.*) FILTER (WHERE NOT bi.deleted)::BIGINT AS total_items,
		COUNT(bi.*) FILTER (WHERE bi.status='AVAILABLE' AND NOT bi.deleted)::BIGINT AS available_items
	FROM books b
	LEFT JOIN book_items bi ON bi.book_id = b.id
	GROUP BY b.id
	ORDER BY b.id DESC`
	var out []model.BookSummary
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.BookSummary, error) {
	const q = `
	SELECT b.id, b.title, b.author, b.isbn, b.publisher, b.published_at,
		b.category, b.description, b.image, b.created_at,
		COUNT(bi.*) FILTER (WHERE NOT bi.deleted)::BIGINT AS total_items,
		COUNT(bi.*) FILTER (WHERE bi.status='AVAILABLE' AND NOT bi.deleted)::BIGINT AS available_items
	FROM books b
	LEFT JOIN book_items bi ON bi.book_id = b.id
	WHERE b.id = $1
	GROUP BY b.id`
	var b model.BookSummary
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	const q = `
	SELECT id, title, author, isbn, publisher, published_at, category, description, image, created_at
	FROM books
	WHERE isbn = $1`
	var b model.Book
	if err := r.db.GetContext(ctx, &b, q, isbn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) UpdateCategory(ctx context.Context, id int64, category string) error {
	const q = `UPDATE books SET category = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, category)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SoftDeleteItem(ctx context.Context, itemID int64) error {
	const q = `
	UPDATE book_items
	SET deleted = TRUE,
		updated_at = NOW()
	WHERE id = $1
	AND NOT deleted`
	res, err := r.db.ExecContext(ctx, q, itemID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ItemsByIDs(ctx context.Context, ids []int64) ([]model.ScannedItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
	SELECT bi.id, bi.book_id, bi.status, bi.deleted, b.title, b.category
	FROM book_items bi
	JOIN books b ON b.id = bi.book_id
	WHERE bi.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	q = r.db.Rebind(q)
	var out []model.ScannedItem
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) AvailableItemIDs(ctx context.Context) ([]int64, error) {
	const q = `SELECT id FROM book_items WHERE status = 'AVAILABLE' AND NOT deleted`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ShelfCategory(ctx context.Context, shelfID int64) (string, error) {
	const q = `SELECT category FROM shelves WHERE id = $1`
	var cat string
	err := r.db.QueryRowContext(ctx, q, shelfID).Scan(&cat)
	return cat, err
}
