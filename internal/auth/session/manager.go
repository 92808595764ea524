package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/clinicops/internal/config"
)

const (
	DefaultCookieName = "_sid"

	bearerPrefix = "bearer "
	tokenBytes   = 32
)

// Manager locates the session token on a request: the _sid cookie first,
// then an Authorization bearer header.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{cookieName: DefaultCookieName, secure: cfg.AuthCookieSecure}
}

func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	if raw, err := c.Cookie(m.cookieName); err == nil {
		if token := strings.TrimSpace(raw); token != "" {
			return token, true
		}
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Clear expires the session cookie on the client.
func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// NewToken returns 32 random bytes, base64url encoded without padding.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the form a token is stored and looked up in.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}
