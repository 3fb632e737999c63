package model

// LoanPolicy is the single current-policy row (id = 1). MaxBooks is the
// concurrent-open-loan limit per user, LoanPeriod the loan length in days.
type LoanPolicy struct {
	ID         int64 `db:"id" json:"-"`
	MaxBooks   int   `db:"max_books" json:"max_books"`
	LoanPeriod int   `db:"loan_period" json:"loan_period"`
}
