// model/history.go
package model

import "time"

// BookHistory is one borrow-to-return lifecycle record. ReturnedAt is nil
// while the loan is open; at most one open row exists per book item.
type BookHistory struct {
	ID         int64      `db:"id" json:"id"`
	BookItemID int64      `db:"book_item_id" json:"book_item_id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
	Overdue    bool       `db:"overdue" json:"overdue"`
}

// HistoryRecord is the joined read shape for history listings.
type HistoryRecord struct {
	ID         int64      `db:"id" json:"id"`
	BookItemID int64      `db:"book_item_id" json:"book_item_id"`
	BookTitle  string     `db:"book_title" json:"book_title"`
	UserID     int64      `db:"user_id" json:"user_id"`
	UserName   string     `db:"user_name" json:"user_name"`
	CompanyID  string     `db:"company_id" json:"company_id"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
	Overdue    bool       `db:"overdue" json:"overdue"`
}

// HistoryFilter drives the admin/user history searches.
type HistoryFilter struct {
	From      time.Time
	To        time.Time
	UserName  *string
	CompanyID *string
	Overdue   *bool
	Page      int
	Size      int
}

// BookRanking is one row of the most-borrowed report.
type BookRanking struct {
	BookItemID  int64  `db:"book_item_id" json:"book_item_id"`
	BookID      int64  `db:"book_id" json:"book_id"`
	Title       string `db:"title" json:"title"`
	Author      string `db:"author" json:"author"`
	Category    string `db:"category" json:"category"`
	Image       string `db:"image" json:"image"`
	BorrowCount int64  `db:"borrow_count" json:"borrow_count"`
}
