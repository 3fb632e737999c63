package overduesvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kunzatt/bookiki-sub000/model"
	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"
)

type Repo interface {
	WithinTx(ctx context.Context, fn func(historyrepo.LoanTx) error) error
	OpenUnflaggedBefore(ctx context.Context, threshold time.Time) ([]model.BookHistory, error)
}

type PolicyRepo interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64)
}

type Service interface {
	// Sweep flags open loans past their due date and extends the
	// borrowers' penalty windows. Runs once a day.
	Sweep(ctx context.Context) error
}

type service struct {
	r   Repo
	pr  PolicyRepo
	n   Notifier
	log *slog.Logger
}

func New(r Repo, pr PolicyRepo, n Notifier, log *slog.Logger) Service {
	return &service{r: r, pr: pr, n: n, log: log}
}

// Sweep reads the loan period once per run, so a mid-run policy change
// cannot produce two different overdue thresholds within one run. Any
// unexpected error aborts the run; tomorrow's run re-evaluates whatever
// is still open and unflagged, so failures self-heal at daily granularity.
func (s *service) Sweep(ctx context.Context) error {
	policy, err := s.pr.Current(ctx)
	if err != nil {
		return fmt.Errorf("load loan policy: %w", err)
	}

	now := time.Now()
	threshold := now.AddDate(0, 0, -policy.LoanPeriod)
	histories, err := s.r.OpenUnflaggedBefore(ctx, threshold)
	if err != nil {
		return fmt.Errorf("find overdue loans: %w", err)
	}
	if len(histories) == 0 {
		s.log.Info("overdue sweep: nothing to flag")
		return nil
	}

	err = s.r.WithinTx(ctx, func(tx historyrepo.LoanTx) error {
		for _, h := range histories {
			if err := tx.MarkOverdue(ctx, h.ID); err != nil {
				return err
			}
			// The penalty runs until the missed due date; GREATEST in the
			// update means an existing longer penalty is never shortened.
			overdueAt := h.BorrowedAt.AddDate(0, 0, policy.LoanPeriod)
			if err := tx.ExtendActiveAt(ctx, h.UserID, overdueAt); err != nil {
				return err
			}
			s.log.Info("loan flagged overdue",
				"history_id", h.ID,
				"user_id", h.UserID,
				"book_item_id", h.BookItemID,
				"overdue_at", overdueAt,
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("overdue sweep aborted: %w", err)
	}

	for _, h := range histories {
		h := h
		s.n.NotifyAdmins(ctx, model.NotifyOverdue,
			fmt.Sprintf("loan %d for copy %d is overdue", h.ID, h.BookItemID), &h.ID)
	}

	s.log.Info("overdue sweep done", "flagged", len(histories))
	return nil
}
