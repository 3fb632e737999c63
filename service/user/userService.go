package usersvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kunzatt/bookiki-sub000/model"
	"github.com/kunzatt/bookiki-sub000/util/hash"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrWrongOldPwd = errors.New("old password does not match")
)

type Repo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type Service interface {
	Profile(ctx context.Context, id int64) (*model.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	ChangePassword(ctx context.Context, id int64, oldPwd, newPwd string) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Profile(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateName(ctx context.Context, id int64, name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}
	if err := s.r.UpdateName(ctx, id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, id int64, oldPwd, newPwd string) error {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !hash.Check(u.PasswordHash, oldPwd) {
		return ErrWrongOldPwd
	}
	hashed, err := hash.HashPassword(newPwd)
	if err != nil {
		return err
	}
	return s.r.UpdatePassword(ctx, id, hashed)
}
