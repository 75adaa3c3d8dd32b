package domain

import "errors"

var (
	ErrNotFound      = errors.New("order not found")
	ErrAlreadyExists = errors.New("order already exists")
	ErrTimeout       = errors.New("store operation timed out")
	ErrInternal      = errors.New("store operation failed")
)
