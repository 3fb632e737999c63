package bookhistorysvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kunzatt/bookiki-sub000/model"
)

type mockRepo struct {
	dayStart time.Time
	dayEnd   time.Time
	rows     []model.HistoryRecord

	adminFilter model.HistoryFilter
	userID      int64
	overdueOnly bool
}

func (m *mockRepo) AdminSearch(ctx context.Context, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	m.adminFilter = f
	return m.rows, nil
}
func (m *mockRepo) UserHistory(ctx context.Context, userID int64, f model.HistoryFilter) ([]model.HistoryRecord, error) {
	m.userID = userID
	return m.rows, nil
}
func (m *mockRepo) CurrentBorrows(ctx context.Context, userID int64, overdueOnly bool) ([]model.HistoryRecord, error) {
	m.userID = userID
	m.overdueOnly = overdueOnly
	return m.rows, nil
}
func (m *mockRepo) OpenBorrowedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]model.HistoryRecord, error) {
	m.dayStart, m.dayEnd = dayStart, dayEnd
	return m.rows, nil
}

type mockPolicyRepo struct{ policy model.LoanPolicy }

func (m *mockPolicyRepo) Current(ctx context.Context) (*model.LoanPolicy, error) {
	return &m.policy, nil
}

func TestDueTomorrow_Window(t *testing.T) {
	m := &mockRepo{rows: []model.HistoryRecord{{ID: 1}}}
	svc := New(m, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}})

	rows, err := svc.DueTomorrow(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Loans due tomorrow were borrowed loanPeriod-2 days ago; the window
	// covers that whole calendar day.
	target := time.Now().AddDate(0, 0, -12)
	wantStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	require.Equal(t, wantStart, m.dayStart)
	require.Equal(t, wantStart.AddDate(0, 0, 1), m.dayEnd)
}

func TestPassThroughs(t *testing.T) {
	m := &mockRepo{rows: []model.HistoryRecord{{ID: 9}}}
	svc := New(m, &mockPolicyRepo{policy: model.LoanPolicy{MaxBooks: 3, LoanPeriod: 14}})

	name := "kim"
	f := model.HistoryFilter{UserName: &name}
	rows, err := svc.AdminSearch(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, &name, m.adminFilter.UserName)

	_, err = svc.UserHistory(context.Background(), 42, model.HistoryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(42), m.userID)

	_, err = svc.CurrentBorrows(context.Background(), 7, true)
	require.NoError(t, err)
	require.Equal(t, int64(7), m.userID)
	require.True(t, m.overdueOnly)
}
