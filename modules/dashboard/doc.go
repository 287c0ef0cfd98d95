// Package dashboard renders the signed-in user's overview page: a stat grid
// with the account's email status, provider, age, last sign-in and the time
// left on the current session.
package dashboard
