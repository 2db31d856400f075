package domain

import "errors"

var (
	ErrInvalidRow        = errors.New("invalid_row")
	ErrInvalidProjection = errors.New("invalid_projection")
	ErrInvalidFilter     = errors.New("invalid_filter")
	ErrInvalidTimeRange  = errors.New("invalid_time_range")
	ErrNotFound          = errors.New("not_found")
)
