package models

import "errors"

var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidLimit       = errors.New("limit must be a positive integer")
	ErrUserNotFound       = errors.New("user not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("rate limit exceeded")
)
