package qnasvc

import (
	"context"
	"errors"

	"github.com/kunzatt/bookiki-sub000/model"
)

type Repo interface {
	Insert(ctx context.Context, q *model.Qna) error
	ListByUser(ctx context.Context, userID int64) ([]model.Qna, error)
	ListAll(ctx context.Context, page, size int) ([]model.Qna, error)
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64)
}

type Service interface {
	Create(ctx context.Context, userID int64, title, content string) (*model.Qna, error)
	Mine(ctx context.Context, userID int64) ([]model.Qna, error)
	All(ctx context.Context, page, size int) ([]model.Qna, error)
}

type service struct {
	r Repo
	n Notifier
}

func New(r Repo, n Notifier) Service { return &service{r: r, n: n} }

func (s *service) Create(ctx context.Context, userID int64, title, content string) (*model.Qna, error) {
	if title == "" || content == "" {
		return nil, errors.New("title and content are required")
	}
	q := &model.Qna{UserID: userID, Title: title, Content: content}
	if err := s.r.Insert(ctx, q); err != nil {
		return nil, err
	}
	s.n.NotifyAdmins(ctx, model.NotifyQnaCreated, q.Title, &q.ID)
	return q, nil
}

func (s *service) Mine(ctx context.Context, userID int64) ([]model.Qna, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) All(ctx context.Context, page, size int) ([]model.Qna, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.r.ListAll(ctx, page, size)
}
