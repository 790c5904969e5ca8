package middleware

import (
	"net/http"
	"strings"
	"time"

	"portfolio-email-service/internal/delivery/http/response"
	"portfolio-email-service/pkg/audit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// MsgOriginNotAllowed is returned to browsers calling from an origin outside the allow-list.
const MsgOriginNotAllowed = "Not allowed by CORS"

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy struct {
	allowed map[string]bool
	// previewSuffix admits any https origin ending with it, e.g. ".vercel.app".
	previewSuffix string
}

// NewOriginPolicy builds a policy from an explicit allow-list and a preview-domain suffix.
// An empty suffix disables the wildcard.
func NewOriginPolicy(origins []string, previewSuffix string) *OriginPolicy {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = true
		}
	}
	return &OriginPolicy{allowed: allowed, previewSuffix: previewSuffix}
}

// Allow reports whether origin may call the API. An empty origin is a same-origin or
// non-browser caller and is always allowed.
func (p *OriginPolicy) Allow(origin string) bool {
	if origin == "" {
		return true
	}
	if p.allowed[origin] {
		return true
	}
	if p.previewSuffix == "" || !strings.HasPrefix(origin, "https://") {
		return false
	}
	host := strings.TrimPrefix(origin, "https://")
	// "https://.vercel.app" has no subdomain.
	return strings.HasSuffix(host, p.previewSuffix) && len(host) > len(p.previewSuffix)
}

// CORSMiddleware applies the origin policy. Disallowed origins are answered with 403
// before any handler runs; allowed ones get the usual CORS headers from gin-contrib/cors.
func CORSMiddleware(policy *OriginPolicy, auditLog *audit.Logger) gin.HandlerFunc {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	corsHandler := cors.New(cors.Config{
		AllowOriginFunc:  policy.Allow,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !policy.Allow(origin) {
			auditLog.CORSOriginRejected(c.Request.Context(), origin, c.Request.URL.Path, c.GetString(RequestIDKey))
			c.Header("Vary", "Origin")
			response.Error(c, http.StatusForbidden, MsgOriginNotAllowed, nil)
			c.Abort()
			return
		}
		corsHandler(c)
	}
}
