package policysvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kunzatt/bookiki-sub000/model"
)

type mockRepo struct {
	policy model.LoanPolicy
	calls  int
}

func (m *mockRepo) Current(ctx context.Context) (*model.LoanPolicy, error) {
	return &m.policy, nil
}
func (m *mockRepo) Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error) {
	m.calls++
	m.policy = model.LoanPolicy{ID: 1, MaxBooks: maxBooks, LoanPeriod: loanPeriod}
	return &m.policy, nil
}
func (m *mockRepo) UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error) {
	m.calls++
	m.policy.MaxBooks = maxBooks
	return &m.policy, nil
}
func (m *mockRepo) UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error) {
	m.calls++
	m.policy.LoanPeriod = loanPeriod
	return &m.policy, nil
}

func TestUpdate_Validation(t *testing.T) {
	m := &mockRepo{}
	svc := New(m)

	_, err := svc.Update(context.Background(), 0, 14)
	require.Equal(t, ErrInvalidMaxBooks, Code(err))

	_, err = svc.Update(context.Background(), 3, 0)
	require.Equal(t, ErrInvalidLoanPeriod, Code(err))

	_, err = svc.UpdateMaxBooks(context.Background(), -1)
	require.Equal(t, ErrInvalidMaxBooks, Code(err))

	_, err = svc.UpdateLoanPeriod(context.Background(), -7)
	require.Equal(t, ErrInvalidLoanPeriod, Code(err))

	// Nothing reached the repository.
	require.Zero(t, m.calls)
}

func TestUpdate_Success(t *testing.T) {
	m := &mockRepo{}
	svc := New(m)

	p, err := svc.Update(context.Background(), 5, 21)
	require.NoError(t, err)
	require.Equal(t, 5, p.MaxBooks)
	require.Equal(t, 21, p.LoanPeriod)

	p, err = svc.UpdateMaxBooks(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, p.MaxBooks)

	p, err = svc.UpdateLoanPeriod(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, p.LoanPeriod)
}

func TestUpdate_BoundaryOfOne(t *testing.T) {
	svc := New(&mockRepo{})

	p, err := svc.Update(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, p.MaxBooks)
	require.Equal(t, 1, p.LoanPeriod)
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
	require.Equal(t, ErrInvalidMaxBooks, Code(makeErr(ErrInvalidMaxBooks)))
}
