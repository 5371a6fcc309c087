package domain

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// Identity errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("not allowed to perform this action")
	ErrEmailExists        = errors.New("email already registered")
	ErrNovaIDExists       = errors.New("nova id already taken")
	ErrInvalidRole        = errors.New("invalid role")
)

// Catalog errors
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNotEmpty  = errors.New("category still has courses")
	ErrUnknownInstructor = errors.New("instructor must be an existing teacher")
	ErrUnknownVideo      = errors.New("video does not exist")
)

// Billing errors
var (
	ErrVoucherRequired        = errors.New("voucher file is required")
	ErrVoucherTooLarge        = errors.New("voucher file is too large")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrPaymentAlreadyReviewed = errors.New("payment was already reviewed")
	ErrUnknownStudent         = errors.New("student does not exist")
	ErrUnknownCourse          = errors.New("course does not exist")
)
