package cookie

import "errors"

var (
	ErrReadOnly       = errors.New("cookie.read_only")
	ErrHeadersWritten = errors.New("cookie.headers_written")
	ErrInvalidFormat  = errors.New("cookie.invalid_format")
)
