package bookhistorysvc

import (
	"context"
	"time"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error)
	UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error)
	CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error)
	OpenBorrowedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]model.HistoryRecord, error)
}

type PolicyRepo interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
}

type Service interface {
	AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error)
	UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error)
	CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error)

	// DueTomorrow feeds the return-deadline notification job: open loans
	// whose due date is tomorrow, i.e. borrowed loanPeriod-2 days ago.
	DueTomorrow(ctx context.Context) ([]model.HistoryRecord, error)
}

type service struct {
	r  Repo
	pr PolicyRepo
}

func New(r Repo, pr PolicyRepo) Service { return &service{r: r, pr: pr} }

func (s *service) AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	return s.r.AdminSearch(ctx, f)
}

func (s *service) UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	return s.r.UserHistory(ctx, userID, f)
}

func (s *service) CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error) {
	return s.r.CurrentBorrows(ctx, userID, overdueOnly)
}

func (s *service) DueTomorrow(ctx context.Context) ([]model.HistoryRecord, error) {
	policy, err := s.pr.Current(ctx)
	if err != nil {
		return nil, err
	}

	target := time.Now().AddDate(0, 0, -(policy.LoanPeriod - 2))
	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	return s.r.OpenBorrowedOn(ctx, dayStart, dayEnd)
}
