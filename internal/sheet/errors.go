package sheet

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported_format")
	ErrNoSheet           = errors.New("no_sheet")
)
