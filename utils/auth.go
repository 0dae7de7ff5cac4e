package utils

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"
)

// Admin area paths
const (
	AdminLoginPath     = "/admin/login"
	AdminDashboardPath = "/admin/dashboard"
)

// LoginRequiredMessage is flashed when a protected page is requested without a session.
const LoginRequiredMessage = "Please log in to access this page."

// AdminGate protects admin-only views behind the session marker.
type AdminGate struct {
	sessions *SessionManager
}

// NewAdminGate creates a gate backed by the given session manager.
func NewAdminGate(sessions *SessionManager) *AdminGate {
	return &AdminGate{sessions: sessions}
}

// Wrap returns a handler that only invokes next when the session is authenticated.
// Otherwise a warning is flashed and the client is redirected to the login view.
func (g *AdminGate) Wrap(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(re *core.RequestEvent) error {
		session := g.sessions.Load(re.Request)
		if session.IsAdmin() {
			return next(re)
		}

		log.Printf("[Auth] Unauthenticated request to %s", re.Request.URL.Path)

		session.AddFlash(FlashWarning, LoginRequiredMessage)
		if err := g.sessions.Save(re.Response, session); err != nil {
			return err
		}
		return re.Redirect(http.StatusFound, AdminLoginPath)
	}
}

// AdminCredentials is the statically configured admin login pair.
type AdminCredentials struct {
	Email    string
	Password string
}

// Match compares a submitted pair with the configured one. The configured
// password may be a bcrypt hash; otherwise it is compared verbatim.
func (c AdminCredentials) Match(email, password string) bool {
	if c.Email == "" || c.Password == "" {
		return false
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(c.Email)) == 1

	var passwordOK bool
	if isBcryptHash(c.Password) {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	}

	return emailOK && passwordOK
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
