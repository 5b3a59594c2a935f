package domain

import "errors"

var (
	ErrNotFound      = errors.New("subscription not found")
	ErrInvalidStatus = errors.New("invalid_status")
)
