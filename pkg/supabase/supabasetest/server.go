// Package supabasetest provides an in-process fake of the auth server for
// tests of code built on package supabase.
package supabasetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/supakit/pkg/jwt"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// AnonKey is the key the fake server accepts.
const AnonKey = "test-anon-key"

type account struct {
	password string
	user     supabase.User
}

type token struct {
	email   string
	expires time.Time
}

// Server is a minimal GoTrue lookalike. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account
	access        map[string]token
	refresh       map[string]string
	otpHashes     map[string]string
	calls         map[string]int
	seq           int
	tokenTTL      time.Duration
	refreshStatus int
	confirmSignup bool
}

// NewServer starts a fake server that is closed with the test.
func NewServer(t testing.TB) *Server {
	s := &Server{
		accounts:  make(map[string]*account),
		access:    make(map[string]token),
		refresh:   make(map[string]string),
		otpHashes: make(map[string]string),
		calls:     make(map[string]int),
		tokenTTL:  time.Hour,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Config points a client at this server.
func (s *Server) Config() supabase.Config {
	return supabase.Config{URL: s.URL, AnonKey: AnonKey}
}

// AddUser registers an account that can sign in with password.
func (s *Server) AddUser(email, password string) supabase.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := supabase.User{
		ID:               uuid.NewString(),
		Aud:              "authenticated",
		Role:             "authenticated",
		Email:            email,
		EmailConfirmedAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
		AppMetadata:      map[string]any{"provider": "email"},
	}
	s.accounts[email] = &account{password: password, user: u}
	return u
}

// IssueSession mints a session for a registered user whose access token
// expires after ttl; a negative ttl yields an already expired token.
func (s *Server) IssueSession(email string, ttl time.Duration) supabase.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email, ttl)
}

// AddOTP makes hash verifiable for email.
func (s *Server) AddOTP(hash, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otpHashes[hash] = email
}

// FailRefresh makes refresh grants answer with status; 0 restores normal behaviour.
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// RequireConfirmation makes sign-ups return a user without a session.
func (s *Server) RequireConfirmation(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmSignup = v
}

// Calls returns how many requests hit endpoint, e.g. "POST /auth/v1/token?grant_type=refresh_token".
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) issueLocked(email string, ttl time.Duration) supabase.Session {
	acc := s.accounts[email]
	s.seq++
	exp := time.Now().Add(ttl)
	at, _ := jwt.Encode(jwt.Claims{
		Subject:   acc.user.ID,
		ExpiresAt: exp.Unix(),
		IssuedAt:  time.Now().Unix(),
		Email:     email,
		Role:      "authenticated",
		SessionID: fmt.Sprintf("session-%d", s.seq),
	})
	rt := fmt.Sprintf("refresh-%d", s.seq)
	s.access[at] = token{email: email, expires: exp}
	s.refresh[rt] = email
	user := acc.user
	return supabase.Session{
		AccessToken:  at,
		TokenType:    "bearer",
		ExpiresIn:    int64(ttl.Seconds()),
		ExpiresAt:    exp.Unix(),
		RefreshToken: rt,
		User:         &user,
	}
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if gt := r.URL.Query().Get("grant_type"); gt != "" {
		key += "?grant_type=" + gt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++

	if r.Header.Get("apikey") != AnonKey {
		writeError(w, http.StatusUnauthorized, "no_api_key", "Invalid API key")
		return
	}

	switch key {
	case "POST /auth/v1/token?grant_type=password":
		s.passwordGrant(w, r)
	case "POST /auth/v1/token?grant_type=refresh_token":
		s.refreshGrant(w, r)
	case "GET /auth/v1/user":
		s.getUser(w, r)
	case "PUT /auth/v1/user":
		s.updateUser(w, r)
	case "POST /auth/v1/logout":
		s.logout(w, r)
	case "POST /auth/v1/signup":
		s.signup(w, r)
	case "POST /auth/v1/verify":
		s.verify(w, r)
	case "GET /auth/v1/health":
		writeJSON(w, http.StatusOK, map[string]any{"name": "GoTrue", "version": "test"})
	case "POST /auth/v1/otp", "POST /auth/v1/recover":
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeError(w, http.StatusNotFound, "not_found", "not found")
	}
}

func (s *Server) passwordGrant(w http.ResponseWriter, r *http.Request) {
	var body supabase.PasswordCredentials
	_ = json.NewDecoder(r.Body).Decode(&body)
	acc, ok := s.accounts[body.Email]
	if !ok || acc.password != body.Password {
		writeError(w, http.StatusBadRequest, "invalid_credentials", "Invalid login credentials")
		return
	}
	writeJSON(w, http.StatusOK, s.issueLocked(body.Email, s.tokenTTL))
}

func (s *Server) refreshGrant(w http.ResponseWriter, r *http.Request) {
	if s.refreshStatus != 0 {
		writeError(w, s.refreshStatus, "refresh_failed", "refresh failed")
		return
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	email, ok := s.refresh[body.RefreshToken]
	if !ok {
		writeError(w, http.StatusBadRequest, "refresh_token_not_found", "Invalid Refresh Token: Refresh Token Not Found")
		return
	}
	delete(s.refresh, body.RefreshToken)
	writeJSON(w, http.StatusOK, s.issueLocked(email, s.tokenTTL))
}

func (s *Server) bearer(r *http.Request) (*account, string, bool) {
	at := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	tok, ok := s.access[at]
	if !ok || time.Now().After(tok.expires) {
		return nil, at, false
	}
	return s.accounts[tok.email], at, true
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	var attrs supabase.UserAttributes
	_ = json.NewDecoder(r.Body).Decode(&attrs)
	if attrs.Data != nil {
		acc.user.UserMetadata = attrs.Data
	}
	if attrs.Password != "" {
		acc.password = attrs.Password
	}
	acc.user.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	acc, at, ok := s.bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	delete(s.access, at)
	if r.URL.Query().Get("scope") != "local" {
		for rt, email := range s.refresh {
			if email == acc.user.Email {
				delete(s.refresh, rt)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body supabase.SignUpParams
	_ = json.NewDecoder(r.Body).Decode(&body)
	if _, exists := s.accounts[body.Email]; exists {
		writeError(w, http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
		return
	}
	now := time.Now().UTC()
	s.accounts[body.Email] = &account{
		password: body.Password,
		user: supabase.User{
			ID:           uuid.NewString(),
			Aud:          "authenticated",
			Role:         "authenticated",
			Email:        body.Email,
			CreatedAt:    now,
			UpdatedAt:    now,
			UserMetadata: body.Data,
		},
	}
	if s.confirmSignup {
		writeJSON(w, http.StatusOK, s.accounts[body.Email].user)
		return
	}
	writeJSON(w, http.StatusOK, s.issueLocked(body.Email, s.tokenTTL))
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var body supabase.VerifyOTPParams
	_ = json.NewDecoder(r.Body).Decode(&body)
	email, ok := s.otpHashes[body.TokenHash]
	if !ok {
		writeError(w, http.StatusForbidden, "otp_expired", "Email link is invalid or has expired")
		return
	}
	delete(s.otpHashes, body.TokenHash)
	writeJSON(w, http.StatusOK, s.issueLocked(email, s.tokenTTL))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "error_code": code, "msg": msg})
}
