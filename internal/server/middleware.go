package server

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
	"github.com/hintboard/hintboard/internal/tenant"
)

const (
	contextUserKey    = "current_user"
	contextTenancyKey = "tenancy"
)

// authenticatedUser resolves the session cookie to a user. Anonymous callers
// and dead sessions come back as (nil, nil); only infrastructure failures
// surface as errors.
func (s *Server) authenticatedUser(c *gin.Context) (*authdomain.User, error) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		return nil, nil
	}

	ctx := c.Request.Context()
	sess, err := s.authsvc.Authenticate(ctx, token)
	if err != nil {
		if isAnonymousAuthError(err) {
			return nil, nil
		}
		return nil, err
	}

	user, err := s.authsvc.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func isAnonymousAuthError(err error) bool {
	return errors.Is(err, authdomain.ErrSessionNotFound) ||
		errors.Is(err, authdomain.ErrSessionExpired) ||
		errors.Is(err, authdomain.ErrSessionRevoked) ||
		errors.Is(err, authdomain.ErrInvalidSession)
}

// AuthRequired rejects anonymous callers. When TenantContext already resolved
// the user it is reused; otherwise the session is authenticated here.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); ok {
			c.Next()
			return
		}

		user, err := s.authenticatedUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// TenantContext resolves the organization addressed by the request host for
// the API surface, which the page gate deliberately skips. Unknown hosts and
// apex-domain calls are not found; membership lookup failures degrade the
// caller to guest the same way the gate does.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug, ok := s.resolver.Subdomain(c.Request.Host)
		if !ok {
			AbortWithError(c, ErrNotFound)
			return
		}

		ctx := c.Request.Context()
		org, err := s.orgsvc.GetBySlug(ctx, slug)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user, err := s.authenticatedUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		role := organizationdomain.RoleGuest
		t := tenant.Tenancy{
			OrgID:         org.ID,
			OrgName:       org.Name,
			Slug:          org.Slug,
			LogoURL:       org.LogoURL,
			Theme:         org.Theme,
			EffectiveRole: role,
			ActualRole:    role,
		}
		if t.Theme == "" {
			t.Theme = organizationdomain.DefaultTheme
		}

		if user != nil {
			c.Set(contextUserKey, user)
			t.UserID = user.ID
			t.Authenticated = true

			membership, err := s.orgsvc.GetMembership(ctx, user.ID, org.ID)
			if err != nil {
				s.log.Warn("membership lookup failed, treating caller as guest",
					zap.String("slug", org.Slug), zap.Error(err))
			} else if membership != nil {
				t.EffectiveRole = membership.Role
				t.ActualRole = membership.Role
			}
		}

		c.Set(contextTenancyKey, t)
		c.Set("tenant_slug", org.Slug)
		c.Request = c.Request.WithContext(tenant.WithTenancy(ctx, t))
		c.Next()
	}
}

// RequireRole gates a route on the caller's effective role within the
// resolved organization. TenantContext must run first.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := currentTenancy(c)
		if !ok {
			AbortWithError(c, ErrForbidden)
			return
		}
		for _, role := range roles {
			if t.EffectiveRole == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	return user, ok && user != nil
}

func currentTenancy(c *gin.Context) (tenant.Tenancy, bool) {
	value, ok := c.Get(contextTenancyKey)
	if !ok {
		return tenant.Tenancy{}, false
	}
	t, ok := value.(tenant.Tenancy)
	return t, ok
}
