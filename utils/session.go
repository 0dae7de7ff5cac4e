package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AdminSessionCookie is the cookie carrying the signed admin session.
const AdminSessionCookie = "admin_session"

// Flash categories
const (
	FlashWarning = "warning"
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a one-shot user-facing message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AdminSession holds the data in an admin session cookie.
type AdminSession struct {
	Admin     bool    `json:"adm,omitempty"`
	Flashes   []Flash `json:"fl,omitempty"`
	IssuedAt  int64   `json:"iat"`
	ExpiresAt int64   `json:"exp"`
}

// IsAdmin reports whether the session carries the authenticated marker.
func (s *AdminSession) IsAdmin() bool {
	return s != nil && s.Admin
}

// AddFlash queues a message for the next rendered page.
func (s *AdminSession) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns and clears the queued messages.
func (s *AdminSession) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// SessionManager signs and verifies admin session cookies.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionManager creates a session manager. The secret is domain separated
// so the same value can safely be reused elsewhere.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte("admin-session:" + secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Load returns the session attached to the request. A missing, tampered or
// expired cookie yields an empty session.
func (m *SessionManager) Load(r *http.Request) *AdminSession {
	cookie, err := r.Cookie(AdminSessionCookie)
	if err != nil || cookie.Value == "" {
		return &AdminSession{}
	}

	session, err := m.decode(cookie.Value)
	if err != nil {
		return &AdminSession{}
	}
	return session
}

// Save writes the session back as a browser-session cookie and extends its expiry.
func (m *SessionManager) Save(w http.ResponseWriter, session *AdminSession) error {
	now := m.now().Unix()
	if session.IssuedAt == 0 {
		session.IssuedAt = now
	}
	session.ExpiresAt = now + int64(m.ttl.Seconds())

	value, err := m.encode(session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) encode(session *AdminSession) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + m.sign(encoded), nil
}

func (m *SessionManager) decode(token string) (*AdminSession, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid token format")
	}

	encoded, sig := parts[0], parts[1]

	if !hmac.Equal([]byte(sig), []byte(m.sign(encoded))) {
		return nil, errors.New("invalid signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("invalid encoding")
	}

	var session AdminSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.New("invalid payload")
	}

	if m.now().Unix() > session.ExpiresAt {
		return nil, errors.New("session expired")
	}

	return &session, nil
}

// sign creates an HMAC-SHA256 signature for a session payload.
func (m *SessionManager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return fmt.Sprintf("%x", mac.Sum(nil))
}
