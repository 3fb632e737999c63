package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/kunzatt/bookiki-sub000/model"
	userrepo "github.com/kunzatt/bookiki-sub000/repository/user"
	"github.com/kunzatt/bookiki-sub000/util/hash"
)

type mockRepo struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return nil, sql.ErrNoRows
}
func (m *mockRepo) UpdateName(ctx context.Context, id int64, name string) error     { return nil }
func (m *mockRepo) UpdatePassword(ctx context.Context, id int64, ph string) error   { return nil }
func (m *mockRepo) IDsByRole(ctx context.Context, role model.Role) ([]int64, error) { return nil, nil }

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		Email:     "kim@example.com",
		Password:  "supersecret",
		UserName:  "Kim",
		CompanyID: "EMP-1001",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, model.RoleUser, u.Role)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestRegister_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Email: "taken@example.com", Password: "supersecret", UserName: "Kim", CompanyID: "EMP-1",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_CompanyIDTaken(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_company_id_key"}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Email: "new@example.com", Password: "supersecret", UserName: "Kim", CompanyID: "EMP-1",
	})
	require.ErrorIs(t, err, ErrCompanyIDTaken)
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Email: "ok@example.com", Password: "supersecret", UserName: "Kim", CompanyID: "EMP-1",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmailTaken)
	require.NotErrorIs(t, err, ErrCompanyIDTaken)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(ctx, model.LoginReq{Email: "kim@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_UserNotFound(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "missing@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "kim@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
