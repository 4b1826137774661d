package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
)

// CSRFFormField is the form field name carrying the CSRF token.
const CSRFFormField = "csrf_token"

const keyCSRF = "csrf_token"

// CSRF failure modes.
var (
	ErrCSRFTokenMissing  = errors.New("csrf token missing")
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// EnsureCSRF returns the session's CSRF token, minting one when the
// session has none yet.
func (s *SessionStore) EnsureCSRF(w http.ResponseWriter, r *http.Request) string {
	sess, _ := s.store.Get(r, sessionName)
	if token, _ := sess.Values[keyCSRF].(string); token != "" {
		return token
	}
	token := base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	sess.Values[keyCSRF] = token
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("store csrf token", "error", err)
	}
	return token
}

// VerifyCSRF compares the supplied token with the session token.
func (s *SessionStore) VerifyCSRF(r *http.Request, token string) error {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return ErrCSRFTokenMissing
	}
	expected, _ := sess.Values[keyCSRF].(string)
	if expected == "" || token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}
