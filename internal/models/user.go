package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleStudent Role = "student"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// User is a directory account. Balance and CardNumber are only set for students.
type User struct {
	ID           int              `json:"id" db:"id" example:"4"`
	Name         string           `json:"name" db:"name" example:"John Doe"`
	Email        string           `json:"email" db:"email" example:"student@university.edu"`
	Role         Role             `json:"role" db:"role" example:"student"`
	Status       UserStatus       `json:"status" db:"status" example:"active"`
	Balance      *decimal.Decimal `json:"balance,omitempty" db:"balance"`
	CardNumber   string           `json:"cardNumber,omitempty" db:"card_number" example:"1234567890"`
	AccountID    string           `json:"accountId,omitempty" db:"account_id" example:"student1"`
	PasswordHash string           `json:"-" db:"password_hash"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,oneof=admin manager cashier student"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// UpdateUserRequest is the body of PUT /users. Nil fields are left untouched.
type UpdateUserRequest struct {
	ID         int              `json:"id" validate:"required,gt=0"`
	Name       *string          `json:"name,omitempty" validate:"omitempty,min=2"`
	Email      *string          `json:"email,omitempty" validate:"omitempty,email"`
	Role       *Role            `json:"role,omitempty" validate:"omitempty,oneof=admin manager cashier student"`
	Status     *UserStatus      `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
	CardNumber *string          `json:"cardNumber,omitempty"`
}

// Apply merges the supplied fields onto u.
func (r UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.Status != nil {
		u.Status = *r.Status
	}
	if r.Balance != nil {
		b := *r.Balance
		u.Balance = &b
	}
	if r.CardNumber != nil {
		u.CardNumber = *r.CardNumber
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"cashier@university.edu"`
	Password string `json:"password" validate:"required" example:"cashier123"`
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
