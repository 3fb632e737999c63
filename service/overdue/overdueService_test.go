package overduesvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kunzatt/bookiki-sub000/model"
	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"
)

type extension struct {
	userID int64
	until  time.Time
}

type mockTx struct {
	markOverdueFn func(ctx context.Context, historyID int64) error
	flagged       []int64
	extended      []extension
}

var _ historyrepo.LoanTx = (*mockTx)(nil)

func (m *mockTx) ActiveAt(ctx context.Context, userID int64) (*time.Time, error) { return nil, nil }
func (m *mockTx) ExtendActiveAt(ctx context.Context, userID int64, until time.Time) error {
	m.extended = append(m.extended, extension{userID: userID, until: until})
	return nil
}
func (m *mockTx) CountOpen(ctx context.Context, userID int64) (int, error)   { return 0, nil }
func (m *mockTx) ItemExists(ctx context.Context, itemID int64) (bool, error) { return true, nil }
func (m *mockTx) ClaimItem(ctx context.Context, itemID int64) (bool, error)  { return false, nil }
func (m *mockTx) FreeItem(ctx context.Context, itemID int64) (bool, error)   { return false, nil }
func (m *mockTx) InsertBorrow(ctx context.Context, itemID, userID int64) (*model.BookHistory, error) {
	return nil, errors.New("not used")
}
func (m *mockTx) OpenByItem(ctx context.Context, itemID int64) (*model.BookHistory, error) {
	return nil, errors.New("not used")
}
func (m *mockTx) CloseHistory(ctx context.Context, historyID int64, at time.Time) error { return nil }
func (m *mockTx) MarkOverdue(ctx context.Context, historyID int64) error {
	if m.markOverdueFn != nil {
		if err := m.markOverdueFn(ctx, historyID); err != nil {
			return err
		}
	}
	m.flagged = append(m.flagged, historyID)
	return nil
}

type mockRepo struct {
	tx         *mockTx
	feed       []model.BookHistory
	threshold  time.Time
	rolledBack bool
}

func (m *mockRepo) WithinTx(ctx context.Context, fn func(historyrepo.LoanTx) error) error {
	if err := fn(m.tx); err != nil {
		m.rolledBack = true
		return err
	}
	return nil
}

func (m *mockRepo) OpenUnflaggedBefore(ctx context.Context, threshold time.Time) ([]model.BookHistory, error) {
	m.threshold = threshold
	return m.feed, nil
}

type mockPolicyRepo struct{ policy model.LoanPolicy }

func (m *mockPolicyRepo) Current(ctx context.Context) (*model.LoanPolicy, error) {
	return &m.policy, nil
}

type mockNotifier struct{ notified []int64 }

func (m *mockNotifier) NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64) {
	if refID != nil {
		m.notified = append(m.notified, *refID)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_FlagsAndPenalizes(t *testing.T) {
	borrowedAt := time.Now().AddDate(0, 0, -20)
	tx := &mockTx{}
	repo := &mockRepo{
		tx: tx,
		feed: []model.BookHistory{
			{ID: 1, UserID: 10, BookItemID: 100, BorrowedAt: borrowedAt},
			{ID: 2, UserID: 11, BookItemID: 101, BorrowedAt: borrowedAt},
		},
	}
	n := &mockNotifier{}
	svc := New(repo, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, n, testLogger())

	err := svc.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, tx.flagged)

	// The penalty runs until the due date the borrower missed.
	require.Len(t, tx.extended, 2)
	require.Equal(t, int64(10), tx.extended[0].userID)
	require.Equal(t, borrowedAt.AddDate(0, 0, 14), tx.extended[0].until)

	// Threshold is now minus the loan period, give or take test runtime.
	wantThreshold := time.Now().AddDate(0, 0, -14)
	require.WithinDuration(t, wantThreshold, repo.threshold, time.Minute)

	// Admins hear about each flagged loan after the commit.
	require.Equal(t, []int64{1, 2}, n.notified)
}

func TestSweep_NothingToFlag(t *testing.T) {
	tx := &mockTx{}
	repo := &mockRepo{tx: tx}
	n := &mockNotifier{}
	svc := New(repo, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, n, testLogger())

	require.NoError(t, svc.Sweep(context.Background()))
	require.Empty(t, tx.flagged)
	require.Empty(t, n.notified)
}

func TestSweep_AbortsOnError(t *testing.T) {
	tx := &mockTx{
		markOverdueFn: func(ctx context.Context, historyID int64) error {
			if historyID == 2 {
				return errors.New("deadlock")
			}
			return nil
		},
	}
	repo := &mockRepo{
		tx: tx,
		feed: []model.BookHistory{
			{ID: 1, UserID: 10, BookItemID: 100, BorrowedAt: time.Now().AddDate(0, 0, -20)},
			{ID: 2, UserID: 11, BookItemID: 101, BorrowedAt: time.Now().AddDate(0, 0, -20)},
		},
	}
	n := &mockNotifier{}
	svc := New(repo, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}}, n, testLogger())

	err := svc.Sweep(context.Background())
	require.Error(t, err)
	require.True(t, repo.rolledBack)

	// No notifications go out for a run that rolled back.
	require.Empty(t, n.notified)
}
