package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrDuplicateReview  = errors.New("review already exists")
	ErrDuplicate        = errors.New("already exists")
	ErrForbidden        = errors.New("operation not permitted")
	ErrTransientFailure = errors.New("transient storage failure")
)
