package handlers

import (
	"net/http"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// CookieSettings controls the session cookies. All of them are HttpOnly and SameSite=Strict.
type CookieSettings struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s CookieSettings) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", s.Domain, s.Secure, true)
}

// SetSession writes the access and refresh cookies.
func (s CookieSettings) SetSession(c *gin.Context, pair *auth.TokenPair) {
	s.SetAccess(c, pair.AccessToken)
	s.set(c, middleware.RefreshTokenCookie, pair.RefreshToken, int(s.RefreshTTL.Seconds()))
}

// SetAccess rewrites only the access cookie.
func (s CookieSettings) SetAccess(c *gin.Context, token string) {
	s.set(c, middleware.TokenCookie, token, int(s.AccessTTL.Seconds()))
}

// Clear expires both session cookies.
func (s CookieSettings) Clear(c *gin.Context) {
	s.set(c, middleware.TokenCookie, "", -1)
	s.set(c, middleware.RefreshTokenCookie, "", -1)
}
