package middleware

import (
	"net/http"
	"strconv"

	"saif-gifts/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// GuestHeader carries the guest id for clients that do not keep cookies.
	GuestHeader = "X-Guest-Id"

	ContextOwner = "owner"

	guestCookieMaxAge = 365 * 24 * 60 * 60
)

// cookieStorage keeps the guest id in a long-lived cookie and mirrors it in a
// response header.
type cookieStorage struct {
	c      *gin.Context
	secure bool
}

func (s cookieStorage) Get(key string) (string, error) {
	if v, err := s.c.Cookie(key); err == nil && v != "" {
		return v, nil
	}
	if v := s.c.GetHeader(GuestHeader); v != "" {
		return v, nil
	}
	return "", nil
}

func (s cookieStorage) Set(key, value string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, guestCookieMaxAge, "/", "", s.secure, true)
	s.c.Header(GuestHeader, value)
	return nil
}

// claimsUser reads the user id OptionalAuth or AuthMiddleware put into the
// context.
type claimsUser struct {
	c *gin.Context
}

func (u claimsUser) CurrentUserID() (string, error) {
	id := u.c.GetInt(ContextUserID)
	if id == 0 {
		return "", nil
	}
	return strconv.Itoa(id), nil
}

// Identity resolves the cart owner for the request. It must run after
// OptionalAuth or AuthMiddleware.
func Identity(log *zap.Logger, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolver := identity.NewResolver(claimsUser{c: c}, cookieStorage{c: c, secure: secureCookie}, log)
		c.Set(ContextOwner, resolver.Resolve())
		c.Next()
	}
}

// Owner returns the owner resolved by Identity.
func Owner(c *gin.Context) identity.OwnerKey {
	if v, ok := c.Get(ContextOwner); ok {
		if owner, ok := v.(identity.OwnerKey); ok {
			return owner
		}
	}
	return ""
}
