package tenant

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hintboard/hintboard/internal/auth/session"
	"github.com/hintboard/hintboard/internal/server/render"
)

// Route prefixes the gate never inspects: static assets and the API surface
// resolve tenancy themselves or serve tenant-neutral content.
var skipPrefixes = []string{
	"/api/",
	"/static/",
	"/assets/",
	"/brand/",
	"/public/",
}

var skipExact = map[string]struct{}{
	"/favicon.ico": {},
	"/metrics":     {},
	"/healthz":     {},
	"/readyz":      {},
}

func shouldSkip(path string) bool {
	if _, ok := skipExact[path]; ok {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GinMiddleware runs the gate on every page request and applies its verdict:
// pass-through requests gain the tenancy context and outbound headers,
// redirects short-circuit with 307, unknown tenants render the not-found page
// without touching the requested URL.
func GinMiddleware(gate *Gate, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		req := Request{
			Host:   c.Request.Host,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Scheme: requestScheme(c),
		}
		if token, ok := sessions.ReadToken(c); ok {
			req.SessionToken = token
		}

		decision, err := gate.Decide(c.Request.Context(), req)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "internal", "message": "tenant resolution failed"},
			})
			c.Error(err) //nolint:errcheck
			return
		}

		switch decision.Kind {
		case DecisionRedirect:
			c.Redirect(http.StatusTemporaryRedirect, decision.Location)
			c.Abort()
		case DecisionRewrite:
			render.NotFoundPage(c)
			c.Abort()
		default:
			if decision.Tenancy != nil {
				t := *decision.Tenancy
				for k, v := range t.Headers() {
					c.Header(k, v)
				}
				c.Set("tenant_slug", t.Slug)
				c.Request = c.Request.WithContext(WithTenancy(c.Request.Context(), t))
			}
			c.Next()
		}
	}
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
