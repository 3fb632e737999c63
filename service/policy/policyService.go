package policysvc

import (
	"context"
	"errors"

	"github.com/kunzatt/bookiki-sub000/model"
)

type ErrCode string

const (
	ErrInvalidMaxBooks   ErrCode = "INVALID_MAX_BOOKS"
	ErrInvalidLoanPeriod ErrCode = "INVALID_LOAN_PERIOD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
	Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error)
	UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error)
	UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error)
}

type Service interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
	Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error)
	UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error)
	UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Current(ctx context.Context) (*model.LoanPolicy, error) {
	return s.r.Current(ctx)
}

func (s *service) Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error) {
	if maxBooks < 1 {
		return nil, makeErr(ErrInvalidMaxBooks)
	}
	if loanPeriod < 1 {
		return nil, makeErr(ErrInvalidLoanPeriod)
	}
	return s.r.Update(ctx, maxBooks, loanPeriod)
}

func (s *service) UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error) {
	if maxBooks < 1 {
		return nil, makeErr(ErrInvalidMaxBooks)
	}
	return s.r.UpdateMaxBooks(ctx, maxBooks)
}

func (s *service) UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error) {
	if loanPeriod < 1 {
		return nil, makeErr(ErrInvalidLoanPeriod)
	}
	return s.r.UpdateLoanPeriod(ctx, loanPeriod)
}
