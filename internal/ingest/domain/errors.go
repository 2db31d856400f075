package domain

import "errors"

var (
	ErrNoPatterns = errors.New("no_patterns")
	ErrEmptyPath  = errors.New("empty_path")
)
