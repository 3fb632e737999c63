package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"

	"github.com/kunzatt/bookiki-sub000/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrItemNotFound  ErrCode = "BOOK_ITEM_NOT_FOUND"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"
	ErrNotAvailable  ErrCode = "BOOK_ALREADY_BORROWED"
	ErrNotActive     ErrCode = "USER_NOT_ACTIVE"
	ErrLimitExceeded ErrCode = "BORROW_LIMIT_EXCEEDED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type Borrowed struct {
	HistoryID  int64     `json:"history_id"`
	BookItemID int64     `json:"book_item_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueAt      time.Time `json:"due_at"`
}

type Repo interface {
	WithinTx(ctx context.Context, fn func(historyrepo.LoanTx) error) error
}

type PolicyRepo interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
}

// Notifier is the outbound alert collaborator; dispatch is best-effort
// and must never fail a borrow.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, typ model.NotificationType, content string, refID *int64)
}

type Service interface {
	// Borrow records one loan of a book item by a user.
	Borrow(ctx context.Context, userID, itemID int64) (*Borrowed, error)
}

// ----- Service implementation -----

type service struct {
	r   Repo
	pr  PolicyRepo
	n   Notifier
	log *slog.Logger
}

func New(r Repo, pr PolicyRepo, n Notifier, log *slog.Logger) Service {
	return &service{r: r, pr: pr, n: n, log: log}
}

func (s *service) Borrow(ctx context.Context, userID, itemID int64) (*Borrowed, error) {
	policy, err := s.pr.Current(ctx)
	if err != nil {
		return nil, err
	}

	var h *model.BookHistory
	err = s.r.WithinTx(ctx, func(tx historyrepo.LoanTx) error {
		activeAt, err := tx.ActiveAt(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrUserNotFound)
			}
			return err
		}
		if activeAt != nil && activeAt.After(time.Now()) {
			return makeErr(ErrNotActive)
		}

		open, err := tx.CountOpen(ctx, userID)
		if err != nil {
			return err
		}
		if open >= policy.MaxBooks {
			return makeErr(ErrLimitExceeded)
		}

		// The conditional claim is the mutual-exclusion point: of two
		// concurrent borrows for the same copy, exactly one sees true.
		claimed, err := tx.ClaimItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !claimed {
			exists, err := tx.ItemExists(ctx, itemID)
			if err != nil {
				return err
			}
			if !exists {
				return makeErr(ErrItemNotFound)
			}
			return makeErr(ErrNotAvailable)
		}

		h, err = tx.InsertBorrow(ctx, itemID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	due := h.BorrowedAt.AddDate(0, 0, policy.LoanPeriod)
	s.n.NotifyUser(ctx, userID, model.NotifyBorrowed,
		fmt.Sprintf("due back %s", due.Format("2006-01-02")), &h.ID)

	s.log.Info("book borrowed", "user_id", userID, "book_item_id", itemID, "history_id", h.ID)

	return &Borrowed{
		HistoryID:  h.ID,
		BookItemID: itemID,
		BorrowedAt: h.BorrowedAt,
		DueAt:      due,
	}, nil
}
