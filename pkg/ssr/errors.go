package ssr

import "errors"

var (
	ErrNilStore    = errors.New("ssr.nil_store")
	ErrNilRequest  = errors.New("ssr.nil_request")
	ErrNilResponse = errors.New("ssr.nil_response")
)
