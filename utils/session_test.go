package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// roundTrip saves a session and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, m *SessionManager, session *AdminSession) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, session))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)

	session := &AdminSession{Admin: true}
	session.AddFlash(FlashSuccess, "Welcome back")

	loaded := m.Load(roundTrip(t, m, session))
	require.True(t, loaded.IsAdmin())
	require.Equal(t, []Flash{{Category: FlashSuccess, Message: "Welcome back"}}, loaded.PopFlashes())
	require.Empty(t, loaded.Flashes)
}

func TestSessionManager_CookieAttributes(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, true)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, &AdminSession{Admin: true}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, AdminSessionCookie, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, "/", cookies[0].Path)
}

func TestSessionManager_MissingCookie(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	session := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, session)
	require.False(t, session.IsAdmin())
}

func TestSessionManager_WrongSecret(t *testing.T) {
	signer := NewSessionManager("secret", time.Hour, false)
	req := roundTrip(t, signer, &AdminSession{Admin: true})

	other := NewSessionManager("different", time.Hour, false)
	require.False(t, other.Load(req).IsAdmin())
}

func TestSessionManager_TamperedPayload(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	token, err := m.encode(&AdminSession{Admin: false, ExpiresAt: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	forged, err := m.encode(&AdminSession{Admin: true, ExpiresAt: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	// keep the original signature with the forged payload
	tampered := forged[:len(forged)-64] + token[len(token)-64:]
	_, err = m.decode(tampered)
	require.Error(t, err)
}

func TestSessionManager_Expired(t *testing.T) {
	m := NewSessionManager("secret", time.Minute, false)
	start := time.Now()
	m.now = func() time.Time { return start }

	req := roundTrip(t, m, &AdminSession{Admin: true})
	require.True(t, m.Load(req).IsAdmin())

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	require.False(t, m.Load(req).IsAdmin())
}

func TestAdminSession_NilIsNotAdmin(t *testing.T) {
	var s *AdminSession
	require.False(t, s.IsAdmin())
}
