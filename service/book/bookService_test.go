package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/kunzatt/bookiki-sub000/model"
	booksvc "github.com/kunzatt/bookiki-sub000/service/book"
)

type repoMock struct {
	createFn         func(ctx context.Context, b *model.Book) (int64, error)
	addCopiesFn      func(ctx context.Context, bookID int64, n int) (int64, error)
	byISBNFn         func(ctx context.Context, isbn string) (*model.Book, error)
	updateCategoryFn func(ctx context.Context, id int64, category string) error
	softDeleteItemFn func(ctx context.Context, itemID int64) error
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) (int64, error) {
	return m.createFn(ctx, b)
}
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int) (int64, error) {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) List(ctx context.Context) ([]model.BookSummary, error) { return nil, nil }
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.BookSummary, error) {
	return &model.BookSummary{}, nil
}
func (m *repoMock) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if m.byISBNFn == nil {
		return nil, nil
	}
	return m.byISBNFn(ctx, isbn)
}
func (m *repoMock) UpdateCategory(ctx context.Context, id int64, category string) error {
	return m.updateCategoryFn(ctx, id, category)
}
func (m *repoMock) SoftDeleteItem(ctx context.Context, itemID int64) error {
	return m.softDeleteItemFn(ctx, itemID)
}

func validBook() *model.Book {
	return &model.Book{Title: "Go in Action", Author: "Kennedy", ISBN: "978-1", Category: "TECH"}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})

	for _, b := range []*model.Book{
		{Author: "a", ISBN: "i", Category: "c"},
		{Title: "t", ISBN: "i", Category: "c"},
		{Title: "t", Author: "a", Category: "c"},
		{Title: "t", Author: "a", ISBN: "i"},
	} {
		if _, err := s.Create(context.Background(), b); !errors.Is(err, booksvc.ErrBadInput) {
			t.Fatalf("book %+v: got %v; want ErrBadInput", b, err)
		}
	}
}

func TestCreate_ISBNTaken(t *testing.T) {
	m := &repoMock{
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			return &model.Book{ID: 9, ISBN: isbn}, nil
		},
	}
	s := booksvc.New(m)

	if _, err := s.Create(context.Background(), validBook()); !errors.Is(err, booksvc.ErrISBNTaken) {
		t.Fatalf("got %v; want ErrISBNTaken", err)
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) (int64, error) {
			if b.Title != "Go in Action" {
				return 0, errors.New("bad args")
			}
			return 42, nil
		},
	}
	s := booksvc.New(m)

	id, err := s.Create(context.Background(), validBook())
	if err != nil || id != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", id, err)
	}
}

func TestUpdateCategory(t *testing.T) {
	m := &repoMock{
		updateCategoryFn: func(ctx context.Context, id int64, category string) error {
			if id == 404 {
				return sql.ErrNoRows
			}
			return nil
		},
	}
	s := booksvc.New(m)

	if err := s.UpdateCategory(context.Background(), 1, ""); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("got %v; want ErrBadInput", err)
	}
	if err := s.UpdateCategory(context.Background(), 404, "TECH"); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
	if err := s.UpdateCategory(context.Background(), 1, "TECH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	m := &repoMock{
		softDeleteItemFn: func(ctx context.Context, itemID int64) error {
			if itemID == 404 {
				return sql.ErrNoRows
			}
			return nil
		},
	}
	s := booksvc.New(m)

	if err := s.RemoveItem(context.Background(), 404); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
	if err := s.RemoveItem(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddCopies_PassThrough(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int) (int64, error) { return 3, nil },
	}
	s := booksvc.New(m)

	if n, err := s.AddCopies(context.Background(), 7, 3); err != nil || n != 3 {
		t.Fatalf("AddCopies got %v %v; want 3 nil", n, err)
	}
}
