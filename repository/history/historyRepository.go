// repository/history/historyRepository.go
package historyrepo

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

// LoanTx is the unit of work for loan-lifecycle mutations. Every method
// runs on one database transaction; WithinTx commits when the callback
// returns nil and rolls back otherwise, so a workflow either lands all of
// its writes or none of them.
type LoanTx interface {
	ActiveAt(ctx context.Context, userID int64) (*time.Time, error)
	ExtendActiveAt(ctx context.Context, userID int64, until time.Time) error
	CountOpen(ctx context.Context, userID int64) (int, error)
	ItemExists(ctx context.Context, itemID int64) (bool, error)
	ClaimItem(ctx context.Context, itemID int64) (bool, error)
	FreeItem(ctx context.Context, itemID int64) (bool, error)
	InsertBorrow(ctx context.Context, itemID, userID int64) (*model.BookHistory, error)
	OpenByItem(ctx context.Context, itemID int64) (*model.BookHistory, error)
	CloseHistory(ctx context.Context, historyID int64, at time.Time) error
	MarkOverdue(ctx context.Context, historyID int64) error
}

type Repo interface {
	WithinTx(ctx context.Context, fn func(LoanTx) error) error

	// Overdue sweep feed
	OpenUnflaggedBefore(ctx context.Context, threshold time.Time) ([]model.BookHistory, error)

	// Reporting
	Ranking(ctx context.Context, from, to time.Time, limit int) ([]model.BookRanking, error)
	AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error)
	UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error)
	CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error)
	OpenBorrowedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]model.HistoryRecord, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

var pg = goqu.Dialect("postgres")

func (r *repo) WithinTx(ctx context.Context, fn func(LoanTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&loanTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type loanTx struct{ tx *sqlx.Tx }

func (t *loanTx) ActiveAt(ctx context.Context, userID int64) (*time.Time, error) {
	const q = `SELECT active_at FROM users WHERE id = $1 AND NOT deleted`
	var at *time.Time
	if err := t.tx.QueryRowContext(ctx, q, userID).Scan(&at); err != nil {
		return nil, err
	}
	return at, nil
}

// ExtendActiveAt can only lengthen a penalty window, never shorten it.
func (t *loanTx) ExtendActiveAt(ctx context.Context, userID int64, until time.Time) error {
	const q = `
	UPDATE users
	SET active_at = GREATEST(COALESCE(active_at, $2), $2)
	WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, userID, until)
	return err
}

func (t *loanTx) CountOpen(ctx context.Context, userID int64) (int, error) {
	const q = `
	SELECT COUNT(*)
	FROM book_histories
	WHERE user_id = $1
	AND returned_at IS NULL`
	var n int
	err := t.tx.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func (t *loanTx) ItemExists(ctx context.Context, itemID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM book_items WHERE id = $1 AND NOT deleted)`
	var exists bool
	err := t.tx.QueryRowContext(ctx, q, itemID).Scan(&exists)
	return exists, err
}

// ClaimItem flips an AVAILABLE copy to BORROWED. The conditional update
// plus the rows-affected check is what serializes concurrent borrows on
// the same copy; exactly one caller sees true.
func (t *loanTx) ClaimItem(ctx context.Context, itemID int64) (bool, error) {
	const q = `
	UPDATE book_items
	SET status = 'BORROWED',
		updated_at = NOW()
	WHERE id = $1
	AND status = 'AVAILABLE'
	AND NOT deleted`
	res, err := t.tx.ExecContext(ctx, q, itemID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

// FreeItem is the symmetric flip back to AVAILABLE on return.
func (t *loanTx) FreeItem(ctx context.Context, itemID int64) (bool, error) {
	const q = `
	UPDATE book_items
	SET status = 'AVAILABLE',
		updated_at = NOW()
	WHERE id = $1
	AND status = 'BORROWED'
	AND NOT deleted`
	res, err := t.tx.ExecContext(ctx, q, itemID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (t *loanTx) InsertBorrow(ctx context.Context, itemID, userID int64) (*model.BookHistory, error) {
	const q = `
	INSERT INTO book_histories (book_item_id, user_id, borrowed_at, overdue)
	VALUES ($1, $2, NOW(), FALSE)
	RETURNING id, borrowed_at`
	h := &model.BookHistory{BookItemID: itemID, UserID: userID}
	if err := t.tx.QueryRowContext(ctx, q, itemID, userID).Scan(&h.ID, &h.BorrowedAt); err != nil {
		return nil, err
	}
	return h, nil
}

// OpenByItem returns the single open history for an item. Ordering by
// borrowed_at DESC is a defensive tie-break in case a data anomaly ever
// left more than one open row.
func (t *loanTx) OpenByItem(ctx context.Context, itemID int64) (*model.BookHistory, error) {
	const q = `
	SELECT id, book_item_id, user_id, borrowed_at, returned_at, overdue
	FROM book_histories
	WHERE book_item_id = $1
	AND returned_at IS NULL
	ORDER BY borrowed_at DESC, id DESC
	LIMIT 1`
	var h model.BookHistory
	if err := t.tx.GetContext(ctx, &h, q, itemID); err != nil {
		return nil, err
	}
	return &h, nil
}

func (t *loanTx) CloseHistory(ctx context.Context, historyID int64, at time.Time) error {
	const q = `
	UPDATE book_histories
	SET returned_at = $2
	WHERE id = $1
	AND returned_at IS NULL`
	_, err := t.tx.ExecContext(ctx, q, historyID, at)
	return err
}

func (t *loanTx) MarkOverdue(ctx context.Context, historyID int64) error {
	const q = `UPDATE book_histories SET overdue = TRUE WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, historyID)
	return err
}

func (r *repo) OpenUnflaggedBefore(ctx context.Context, threshold time.Time) ([]model.BookHistory, error) {
	const q = `
	SELECT id, book_item_id, user_id, borrowed_at, returned_at, overdue
	FROM book_histories
	WHERE returned_at IS NULL
	AND NOT overdue
	AND borrowed_at < $1
	ORDER BY id`
	var out []model.BookHistory
	if err := r.db.SelectContext(ctx, &out, q, threshold); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Ranking(ctx context.Context, from, to time.Time, limit int) ([]model.BookRanking, error) {
	const q = `
	SELECT bh.book_item_id,
		b.id AS book_id,
		b.title, b.author, b.category, b.image,
		COUNT(*)::BIGINT AS borrow_count
	FROM book_histories bh
	JOIN book_items bi ON bi.id = bh.book_item_id
	JOIN books b ON b.id = bi.book_id
	WHERE bh.borrowed_at BETWEEN $1 AND $2
	GROUP BY bh.book_item_id, b.id
	ORDER BY borrow_count DESC, bh.book_item_id
	LIMIT $3`
	var out []model.BookRanking
	if err := r.db.SelectContext(ctx, &out, q, from, to, limit); err != nil {
		return nil, err
	}
	return out, nil
}

const defaultPageSize = 20

// AdminSearch composes the optional filters with goqu; the static queries
// above stay hand-written.
func (r *repo) AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	ds := historyBase().
		Where(goqu.I("bh.borrowed_at").Between(goqu.Range(f.From, f.To)))
	if f.UserName != nil {
		ds = ds.Where(goqu.I("u.user_name").ILike("%" + *f.UserName + "%"))
	}
	if f.CompanyID != nil {
		ds = ds.Where(goqu.I("u.company_id").Eq(*f.CompanyID))
	}
	return r.selectRecords(ctx, ds, f)
}

func (r *repo) UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	ds := historyBase().
		Where(goqu.I("bh.user_id").Eq(userID)).
		Where(goqu.I("bh.borrowed_at").Between(goqu.Range(f.From, f.To)))
	return r.selectRecords(ctx, ds, f)
}

func historyBase() *goqu.SelectDataset {
	return pg.From(goqu.T("book_histories").As("bh")).
		Join(goqu.T("book_items").As("bi"), goqu.On(goqu.I("bi.id").Eq(goqu.I("bh.book_item_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("bi.book_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("bh.user_id")))).
		Select(
			goqu.I("bh.id").As("id"),
			goqu.I("bh.book_item_id").As("book_item_id"),
			goqu.I("b.title").As("book_title"),
			goqu.I("bh.user_id").As("user_id"),
			goqu.I("u.user_name").As("user_name"),
			goqu.I("u.company_id").As("company_id"),
			goqu.I("bh.borrowed_at").As("borrowed_at"),
			goqu.I("bh.returned_at").As("returned_at"),
			goqu.I("bh.overdue").As("overdue"),
		)
}

func (r *repo) selectRecords(ctx context.Context, ds *goqu.SelectDataset, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	if f.Overdue != nil {
		if *f.Overdue {
			ds = ds.Where(goqu.I("bh.overdue").IsTrue())
		} else {
			ds = ds.Where(goqu.I("bh.overdue").IsFalse())
		}
	}
	size := f.Size
	if size <= 0 {
		size = defaultPageSize
	}
	page := f.Page
	if page < 0 {
		page = 0
	}
	ds = ds.Order(goqu.I("bh.borrowed_at").Desc(), goqu.I("bh.id").Desc()).
		Limit(uint(size)).
		Offset(uint(page * size))

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var out []model.HistoryRecord
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error) {
	ds := historyBase().
		Where(goqu.I("bh.user_id").Eq(userID)).
		Where(goqu.I("bh.returned_at").IsNull())
	if overdueOnly {
		ds = ds.Where(goqu.I("bh.overdue").IsTrue())
	}
	ds = ds.Order(goqu.I("bh.borrowed_at").Desc())
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var out []model.HistoryRecord
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) OpenBorrowedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]model.HistoryRecord, error) {
	ds := historyBase().
		Where(goqu.I("bh.returned_at").IsNull()).
		Where(goqu.I("bh.borrowed_at").Gte(dayStart)).
		Where(goqu.I("bh.borrowed_at").Lt(dayEnd)).
		Order(goqu.I("bh.id").Asc())
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var out []model.HistoryRecord
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
