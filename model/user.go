package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User.ActiveAt is a "blocked from borrowing until" marker: a value in the
// future means the user cannot open new loans.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	UserName     string     `db:"user_name" json:"user_name"`
	CompanyID    string     `db:"company_id" json:"company_id"`
	Role         Role       `db:"role" json:"role"`
	ActiveAt     *time.Time `db:"active_at" json:"active_at,omitempty"`
	Deleted      bool       `db:"deleted" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	UserName  string `json:"user_name" validate:"required"`
	CompanyID string `json:"company_id" validate:"required"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
