package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/shared"
)

// SessionMaxAge is the fixed validity window measured from the
// creation timestamp stored in the cookie.
const SessionMaxAge = 24 * time.Hour

const (
	sessionName = "educore_session"

	keyUser      = "user"
	keySessionID = "session_id"
	keyFullName  = "full_name"
	keyAPIKey    = "api_key"
	keyAPISecret = "api_secret"
	keyTimestamp = "timestamp"
	keyFlashKind = "flash_kind"
	keyFlashMsg  = "flash_message"
)

// SessionStore persists the authenticated identity in a signed
// client-side cookie. There is no server-side session state: expiry is
// judged from the timestamp written at login, and restoring after a
// reload re-derives roles instead of asking the backend.
type SessionStore struct {
	store    *sessions.CookieStore
	resolver rbac.RoleResolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionStore builds the cookie-backed store. The secret signs and
// encrypts the cookie payload.
func NewSessionStore(secret string, secure bool, resolver rbac.RoleResolver, logger *slog.Logger) *SessionStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{store: store, resolver: resolver, logger: logger, now: time.Now}
}

// Write persists the identity and a fresh creation timestamp. A new
// session id is minted on every login.
func (s *SessionStore) Write(w http.ResponseWriter, r *http.Request, id *shared.Identity) error {
	sess, _ := s.store.Get(r, sessionName)
	if id.SessionID == "" {
		id.SessionID = uuid.NewString()
	}
	sess.Values[keyUser] = id.User
	sess.Values[keySessionID] = id.SessionID
	sess.Values[keyFullName] = id.FullName
	sess.Values[keyAPIKey] = id.APIKey
	sess.Values[keyAPISecret] = id.APISecret
	sess.Values[keyTimestamp] = s.now().UnixMilli()
	return sess.Save(r, w)
}

// Read restores the identity from the cookie. Expired, absent or
// malformed sessions report expired=true so the caller can clear.
func (s *SessionStore) Read(r *http.Request) (id *shared.Identity, expired bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil || sess.IsNew {
		return nil, err != nil
	}
	user, _ := sess.Values[keyUser].(string)
	ts, _ := sess.Values[keyTimestamp].(int64)
	if user == "" || ts == 0 {
		return nil, true
	}
	if s.now().Sub(time.UnixMilli(ts)) >= SessionMaxAge {
		return nil, true
	}
	fullName, _ := sess.Values[keyFullName].(string)
	apiKey, _ := sess.Values[keyAPIKey].(string)
	apiSecret, _ := sess.Values[keyAPISecret].(string)
	sessionID, _ := sess.Values[keySessionID].(string)
	identity := &shared.Identity{
		User:      user,
		FullName:  fullName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		UserType:  "System User",
		SessionID: sessionID,
	}
	if s.resolver != nil {
		identity.Roles = s.resolver.Resolve(user)
	}
	return identity, false
}

// Clear drops the cookie unconditionally.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.store.Get(r, sessionName)
	sess.Options.MaxAge = -1
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("clear session", slog.Any("error", err))
	}
}

// AddFlash stores a one-time notification alongside the identity.
func (s *SessionStore) AddFlash(w http.ResponseWriter, r *http.Request, flash shared.FlashMessage) {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[keyFlashKind] = flash.Kind
	sess.Values[keyFlashMsg] = flash.Message
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("store flash", slog.Any("error", err))
	}
}

// PopFlash removes and returns the pending notification, if any.
func (s *SessionStore) PopFlash(w http.ResponseWriter, r *http.Request) *shared.FlashMessage {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	msg, _ := sess.Values[keyFlashMsg].(string)
	if msg == "" {
		return nil
	}
	kind, _ := sess.Values[keyFlashKind].(string)
	delete(sess.Values, keyFlashKind)
	delete(sess.Values, keyFlashMsg)
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("pop flash", slog.Any("error", err))
	}
	return &shared.FlashMessage{Kind: kind, Message: msg}
}
