package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kunzatt/bookiki-sub000/model"
	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"
)

type mockTx struct {
	activeAtFn     func(ctx context.Context, userID int64) (*time.Time, error)
	countOpenFn    func(ctx context.Context, userID int64) (int, error)
	itemExistsFn   func(ctx context.Context, itemID int64) (bool, error)
	claimItemFn    func(ctx context.Context, itemID int64) (bool, error)
	insertBorrowFn func(ctx context.Context, itemID, userID int64) (*model.BookHistory, error)
}

var _ historyrepo.LoanTx = (*mockTx)(nil)

func (m *mockTx) ActiveAt(ctx context.Context, userID int64) (*time.Time, error) {
	return m.activeAtFn(ctx, userID)
}
func (m *mockTx) ExtendActiveAt(ctx context.Context, userID int64, until time.Time) error {
	return nil
}
func (m *mockTx) CountOpen(ctx context.Context, userID int64) (int, error) {
	if m.countOpenFn == nil {
		return 0, nil
	}
	return m.countOpenFn(ctx, userID)
}
func (m *mockTx) ItemExists(ctx context.Context, itemID int64) (bool, error) {
	return m.itemExistsFn(ctx, itemID)
}
func (m *mockTx) ClaimItem(ctx context.Context, itemID int64) (bool, error) {
	return m.claimItemFn(ctx, itemID)
}
func (m *mockTx) FreeItem(ctx context.Context, itemID int64) (bool, error) { return false, nil }
func (m *mockTx) InsertBorrow(ctx context.Context, itemID, userID int64) (*model.BookHistory, error) {
	return m.insertBorrowFn(ctx, itemID, userID)
}
func (m *mockTx) OpenByItem(ctx context.Context, itemID int64) (*model.BookHistory, error) {
	return nil, sql.ErrNoRows
}
func (m *mockTx) CloseHistory(ctx context.Context, historyID int64, at time.Time) error { return nil }
func (m *mockTx) MarkOverdue(ctx context.Context, historyID int64) error                { return nil }

type mockRepo struct {
	tx        *mockTx
	committed bool
}

func (m *mockRepo) WithinTx(ctx context.Context, fn func(historyrepo.LoanTx) error) error {
	err := fn(m.tx)
	m.committed = err == nil
	return err
}

type mockPolicyRepo struct{ policy model.LoanPolicy }

func (m *mockPolicyRepo) Current(ctx context.Context) (*model.LoanPolicy, error) {
	return &m.policy, nil
}

type mockNotifier struct {
	typ     model.NotificationType
	userID  int64
	content string
	calls   int
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID int64, typ model.NotificationType, content string, refID *int64) {
	m.userID = userID
	m.typ = typ
	m.content = content
	m.calls++
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeUser() func(ctx context.Context, userID int64) (*time.Time, error) {
	return func(ctx context.Context, userID int64) (*time.Time, error) { return nil, nil }
}

func TestBorrow_Success(t *testing.T) {
	borrowedAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	tx := &mockTx{
		activeAtFn: activeUser(),
		claimItemFn: func(ctx context.Context, itemID int64) (bool, error) {
			return true, nil
		},
		insertBorrowFn: func(ctx context.Context, itemID, userID int64) (*model.BookHistory, error) {
			return &model.BookHistory{ID: 77, BookItemID: itemID, UserID: userID, BorrowedAt: borrowedAt}, nil
		},
	}
	repo := &mockRepo{tx: tx}
	n := &mockNotifier{}
	svc := New(repo, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, n, testLogger())

	got, err := svc.Borrow(context.Background(), 5, 42)
	require.NoError(t, err)
	require.True(t, repo.committed)
	require.Equal(t, int64(77), got.HistoryID)
	require.Equal(t, int64(42), got.BookItemID)
	require.Equal(t, borrowedAt.AddDate(0, 0, 14), got.DueAt)

	require.Equal(t, 1, n.calls)
	require.Equal(t, model.NotifyBorrowed, n.typ)
	require.Equal(t, int64(5), n.userID)
}

func TestBorrow_UserNotFound(t *testing.T) {
	tx := &mockTx{
		activeAtFn: func(ctx context.Context, userID int64) (*time.Time, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 999, 42)
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestBorrow_PenalizedUser(t *testing.T) {
	until := time.Now().Add(48 * time.Hour)
	tx := &mockTx{
		activeAtFn: func(ctx context.Context, userID int64) (*time.Time, error) {
			return &until, nil
		},
	}
	n := &mockNotifier{}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, n, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.Equal(t, ErrNotActive, Code(err))
	require.Zero(t, n.calls)
}

func TestBorrow_ExpiredPenaltyIsFine(t *testing.T) {
	until := time.Now().Add(-time.Hour)
	tx := &mockTx{
		activeAtFn: func(ctx context.Context, userID int64) (*time.Time, error) {
			return &until, nil
		},
		claimItemFn: func(ctx context.Context, itemID int64) (bool, error) { return true, nil },
		insertBorrowFn: func(ctx context.Context, itemID, userID int64) (*model.BookHistory, error) {
			return &model.BookHistory{ID: 1, BookItemID: itemID, UserID: userID, BorrowedAt: time.Now()}, nil
		},
	}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.NoError(t, err)
}

func TestBorrow_LimitExceeded(t *testing.T) {
	tx := &mockTx{
		activeAtFn: activeUser(),
		countOpenFn: func(ctx context.Context, userID int64) (int, error) {
			return 3, nil
		},
	}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.Equal(t, ErrLimitExceeded, Code(err))
}

func TestBorrow_ItemAlreadyBorrowed(t *testing.T) {
	tx := &mockTx{
		activeAtFn:   activeUser(),
		claimItemFn:  func(ctx context.Context, itemID int64) (bool, error) { return false, nil },
		itemExistsFn: func(ctx context.Context, itemID int64) (bool, error) { return true, nil },
	}
	repo := &mockRepo{tx: tx}
	svc := New(repo, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.False(t, repo.committed)
}

func TestBorrow_ItemMissing(t *testing.T) {
	tx := &mockTx{
		activeAtFn:   activeUser(),
		claimItemFn:  func(ctx context.Context, itemID int64) (bool, error) { return false, nil },
		itemExistsFn: func(ctx context.Context, itemID int64) (bool, error) { return false, nil },
	}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestBorrow_RepoError(t *testing.T) {
	tx := &mockTx{
		activeAtFn: func(ctx context.Context, userID int64) (*time.Time, error) {
			return nil, errors.New("db down")
		},
	}
	svc := New(&mockRepo{tx: tx}, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, &mockNotifier{}, testLogger())

	_, err := svc.Borrow(context.Background(), 5, 42)
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}
