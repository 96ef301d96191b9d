package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const devOrigin = "http://localhost:5173"

// CORSMiddleware allows the storefront origins listed in originURL
// (comma separated) plus the local dev server. Credentials are allowed so the
// guestId cookie travels with cart requests.
func CORSMiddleware(originURL string) gin.HandlerFunc {
	allowedOrigins := []string{devOrigin}
	for _, origin := range strings.Split(originURL, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" && origin != devOrigin {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", GuestHeader, RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", GuestHeader, RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
