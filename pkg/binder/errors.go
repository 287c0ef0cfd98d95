package binder

import "errors"

var (
	ErrNotApplicable        = errors.New("binder.not_applicable")
	ErrMissingContentType   = errors.New("binder.missing_content_type")
	ErrUnsupportedMediaType = errors.New("binder.unsupported_media_type")
	ErrInvalidForm          = errors.New("binder.invalid_form")
	ErrInvalidQuery         = errors.New("binder.invalid_query")
	ErrInvalidTarget        = errors.New("binder.invalid_target")
)
