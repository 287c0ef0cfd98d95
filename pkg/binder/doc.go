// Package binder fills request structs from form bodies and query strings.
//
// Fields opt in with a struct tag naming the parameter; untagged fields and
// fields tagged "-" are left alone, so one struct can take some values from the
// query and others from the body:
//
//	type LoginRequest struct {
//		Email    string `form:"email"`
//		Password string `form:"password"`
//		Next     string `form:"next" query:"next"`
//	}
//
// Supported field types are strings, booleans, integers, floats, pointers to
// those and slices of them. Binders are plain functions with the signature
// func(*http.Request, any) error and are usually passed to handler.Wrap.
// Form returns ErrNotApplicable for requests without a body, which lets a
// single handler serve both the GET page and the POST submission.
package binder
