// model/book.go
package model

import "time"

// Book is the shared metadata row, one per distinct title/edition.
// Immutable after creation except for category correction.
type Book struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Author      string     `db:"author" json:"author"`
	ISBN        string     `db:"isbn" json:"isbn"`
	Publisher   string     `db:"publisher" json:"publisher"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	Category    string     `db:"category" json:"category"`
	Description string     `db:"description" json:"description"`
	Image       string     `db:"image" json:"image"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// BookSummary is the list/detail shape with the live availability count.
type BookSummary struct {
	Book
	TotalItems     int64 `db:"total_items" json:"total_items"`
	AvailableItems int64 `db:"available_items" json:"available_items"`
}

type BookItemStatus string

const (
	ItemAvailable BookItemStatus = "AVAILABLE"
	ItemBorrowed  BookItemStatus = "BORROWED"
	ItemLost      BookItemStatus = "LOST"
)

// BookItem is a single trackable copy of a catalogued title.
type BookItem struct {
	ID        int64          `db:"id" json:"id"`
	BookID    int64          `db:"book_id" json:"book_id"`
	Status    BookItemStatus `db:"status" json:"status"`
	Deleted   bool           `db:"deleted" json:"deleted"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ScannedItem is a copy joined with its catalog metadata, as the return
// scan needs title and category alongside the status.
type ScannedItem struct {
	ID       int64          `db:"id" json:"id"`
	BookID   int64          `db:"book_id" json:"book_id"`
	Status   BookItemStatus `db:"status" json:"status"`
	Deleted  bool           `db:"deleted" json:"deleted"`
	Title    string         `db:"title" json:"title"`
	Category string         `db:"category" json:"category"`
}

// Shelf is a physical shelf; books on it are expected to share its category.
type Shelf struct {
	ID       int64  `db:"id" json:"id"`
	Category string `db:"category" json:"category"`
}
