package domain

import "errors"

var (
	ErrAlreadyProcessed = errors.New("already_processed")
	ErrInvalidFile      = errors.New("invalid_file")
	ErrInvalidStats     = errors.New("invalid_stats")
)
