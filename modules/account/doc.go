// Package account serves the authentication pages of the dashboard.
//
// Routes:
//
//	GET  /login          sign-in form
//	GET  /signup         sign-up form
//	POST /auth/login     password sign-in, or a magic link when no password is given
//	POST /auth/signup    account creation
//	GET  /auth/confirm   verifies token_hash from an email link
//	POST /auth/logout    signs out and clears the session cookies
//
// Each handler creates a server auth client over the request's cookies, so
// a successful sign-in leaves the session cookies on the response.
package account
