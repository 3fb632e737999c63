package policyrepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kunzatt/bookiki-sub000/model"
)

// The policy table holds a single current row; past values are not kept.
const policyID = 1

type Repo interface {
	Current(ctx context.Context) (*model.LoanPolicy, error)
	Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error)
	UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error)
	UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Current(ctx context.Context) (*model.LoanPolicy, error) {
	const q = `SELECT id, max_books, loan_period FROM loan_policies WHERE id = $1`
	var p model.LoanPolicy
	if err := r.db.GetContext(ctx, &p, q, policyID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Update(ctx context.Context, maxBooks, loanPeriod int) (*model.LoanPolicy, error) {
	const q = `
	UPDATE loan_policies
	SET max_books = $2, loan_period = $3
	WHERE id = $1
	RETURNING id, max_books, loan_period`
	return r.scanOne(ctx, q, policyID, maxBooks, loanPeriod)
}

func (r *repo) UpdateMaxBooks(ctx context.Context, maxBooks int) (*model.LoanPolicy, error) {
	const q = `
	UPDATE loan_policies
	SET max_books = $2
	WHERE id = $1
	RETURNING id, max_books, loan_period`
	return r.scanOne(ctx, q, policyID, maxBooks)
}

func (r *repo) UpdateLoanPeriod(ctx context.Context, loanPeriod int) (*model.LoanPolicy, error) {
	const q = `
	UPDATE loan_policies
	SET loan_period = $2
	WHERE id = $1
	RETURNING id, max_books, loan_period`
	return r.scanOne(ctx, q, policyID, loanPeriod)
}

func (r *repo) scanOne(ctx context.Context, q string, args ...any) (*model.LoanPolicy, error) {
	var p model.LoanPolicy
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&p.ID, &p.MaxBooks, &p.LoanPeriod)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
