package tenant

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Response headers attached on pass-through. Redirects and rewrites never
// carry them; the receiving route re-resolves or shows a generic error page.
const (
	HeaderOrgID          = "x-organization-id"
	HeaderOrgName        = "x-organization-name"
	HeaderOrgRole        = "x-organization-role"
	HeaderOrgActualRole  = "x-organization-actual-role"
	HeaderOrgLogo        = "x-organization-logo"
	HeaderOrgSlug        = "x-organization-slug"
	HeaderOrgTheme       = "x-organization-theme"
	HeaderViewAsCustomer = "x-view-as-customer"
)

// Tenancy is the per-request tenant context computed by the gate. Each
// request gets its own value; it is never shared across invocations.
type Tenancy struct {
	OrgID          snowflake.ID
	OrgName        string
	Slug           string
	LogoURL        string
	Theme          string
	EffectiveRole  string
	ActualRole     string
	ViewAsCustomer bool
	UserID         snowflake.ID
	Authenticated  bool
}

// Headers renders the tenancy as the outbound header set.
func (t Tenancy) Headers() map[string]string {
	return map[string]string{
		HeaderOrgID:          t.OrgID.String(),
		HeaderOrgName:        t.OrgName,
		HeaderOrgRole:        t.EffectiveRole,
		HeaderOrgActualRole:  t.ActualRole,
		HeaderOrgLogo:        t.LogoURL,
		HeaderOrgSlug:        t.Slug,
		HeaderOrgTheme:       t.Theme,
		HeaderViewAsCustomer: strconv.FormatBool(t.ViewAsCustomer),
	}
}

type tenancyKey struct{}

func WithTenancy(ctx context.Context, t Tenancy) context.Context {
	return context.WithValue(ctx, tenancyKey{}, t)
}

func FromContext(ctx context.Context) (Tenancy, bool) {
	t, ok := ctx.Value(tenancyKey{}).(Tenancy)
	return t, ok
}
