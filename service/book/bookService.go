package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kunzatt/bookiki-sub000/model"
)

var (
	ErrNotFound  = errors.New("book not found")
	ErrISBNTaken = errors.New("isbn already catalogued")
	ErrBadInput  = errors.New("invalid payload")
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) (int64, error)
	List(ctx context.Context) ([]model.BookSummary, error)
	Detail(ctx context.Context, id int64) (*model.BookSummary, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	SoftDeleteItem(ctx context.Context, itemID int64) error
}

type Service interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int) (int64, error)
	List(ctx context.Context) ([]model.BookSummary, error)
	Detail(ctx context.Context, id int64) (*model.BookSummary, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	RemoveItem(ctx context.Context, itemID int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, b *model.Book) (int64, error) {
	if b.Title == "" || b.Author == "" || b.ISBN == "" || b.Category == "" {
		return 0, ErrBadInput
	}
	existing, err := s.r.ByISBN(ctx, b.ISBN)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrISBNTaken
	}
	return s.r.Create(ctx, b)
}

func (s *service) AddCopies(ctx context.Context, bookID int64, n int) (int64, error) {
	return s.r.AddCopies(ctx, bookID, n)
}

func (s *service) List(ctx context.Context) ([]model.BookSummary, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.BookSummary, error) {
	return s.r.Detail(ctx, id)
}

func (s *service) UpdateCategory(ctx context.Context, id int64, category string) error {
	if category == "" {
		return ErrBadInput
	}
	if err := s.r.UpdateCategory(ctx, id, category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, itemID int64) error {
	if err := s.r.SoftDeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
