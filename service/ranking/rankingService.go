package rankingsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/kunzatt/bookiki-sub000/model"
)

const (
	rankingLimit  = 10
	rankingWindow = 30 * 24 * time.Hour
)

type Repo interface {
	Ranking(ctx context.Context, from, to time.Time, limit int) ([]model.BookRanking, error)
}

// Cache is best-effort: a miss or a failure falls through to the database.
type Cache interface {
	Get(ctx context.Context) ([]model.BookRanking, bool)
	Set(ctx context.Context, rows []model.BookRanking)
}

type Service interface {
	// Top returns the 10 most-borrowed copies over the trailing 30 days.
	// An empty result is valid.
	Top(ctx context.Context) ([]model.BookRanking, error)
}

type service struct {
	r     Repo
	cache Cache
	log   *slog.Logger
}

func New(r Repo, cache Cache, log *slog.Logger) Service {
	return &service{r: r, cache: cache, log: log}
}

func (s *service) Top(ctx context.Context) ([]model.BookRanking, error) {
	if rows, ok := s.cache.Get(ctx); ok {
		return rows, nil
	}

	to := time.Now()
	from := to.Add(-rankingWindow)
	rows, err := s.r.Ranking(ctx, from, to, rankingLimit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.BookRanking{}
	}

	s.cache.Set(ctx, rows)
	return rows, nil
}
