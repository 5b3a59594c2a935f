package domain

import "errors"

var (
	ErrNotFound      = errors.New("idea not found")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrAlreadyVoted  = errors.New("already voted")
	ErrVoteNotFound  = errors.New("vote not found")
)
