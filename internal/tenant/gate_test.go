package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/clock"
	orgdomain "github.com/hintboard/hintboard/internal/organization/domain"
	subdomain "github.com/hintboard/hintboard/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdentity struct {
	users map[string]*authdomain.User
	err   error
}

func (f *fakeIdentity) CurrentUser(_ context.Context, token string) (*authdomain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[token], nil
}

type fakeDirectory struct {
	orgs        map[string]*orgdomain.Organization
	memberships map[string]string
	userOrgs    map[snowflake.ID][]orgdomain.ListItem

	slugErr   error
	memberErr error
	listErr   error
}

func memberKey(userID, orgID snowflake.ID) string {
	return fmt.Sprintf("%s|%s", userID, orgID)
}

func (f *fakeDirectory) GetBySlug(_ context.Context, slug string) (*orgdomain.Organization, error) {
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	org, ok := f.orgs[slug]
	if !ok {
		return nil, orgdomain.ErrNotFound
	}
	return org, nil
}

func (f *fakeDirectory) ListForUser(_ context.Context, userID snowflake.ID) ([]orgdomain.ListItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.userOrgs[userID], nil
}

func (f *fakeDirectory) GetMembership(_ context.Context, userID, orgID snowflake.ID) (*orgdomain.Membership, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	role, ok := f.memberships[memberKey(userID, orgID)]
	if !ok {
		return nil, nil
	}
	return &orgdomain.Membership{OrgID: orgID, UserID: userID, Role: role}, nil
}

type fakeBilling struct {
	subs map[snowflake.ID]*subdomain.Subscription
	err  error
}

func (f *fakeBilling) GetForUser(_ context.Context, userID snowflake.ID) (*subdomain.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	sub, ok := f.subs[userID]
	if !ok {
		return nil, subdomain.ErrNotFound
	}
	return sub, nil
}

type gateFixture struct {
	gate     *Gate
	identity *fakeIdentity
	dir      *fakeDirectory
	billing  *fakeBilling
	clock    *clock.FakeClock

	adminID snowflake.ID
	org     *orgdomain.Organization
}

const (
	adminToken  = "tok-admin"
	memberToken = "tok-member"
	guestToken  = "tok-guest"
)

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	org := &orgdomain.Organization{
		ID:      node.Generate(),
		Name:    "Acme Inc",
		Slug:    "acme",
		LogoURL: "https://cdn.example.com/acme.png",
		Theme:   "dark",
	}
	admin := &authdomain.User{ID: node.Generate(), Email: "admin@acme.test"}
	member := &authdomain.User{ID: node.Generate(), Email: "member@acme.test"}
	outsider := &authdomain.User{ID: node.Generate(), Email: "outsider@example.test"}

	identity := &fakeIdentity{users: map[string]*authdomain.User{
		adminToken:  admin,
		memberToken: member,
		guestToken:  outsider,
	}}
	dir := &fakeDirectory{
		orgs: map[string]*orgdomain.Organization{"acme": org},
		memberships: map[string]string{
			memberKey(admin.ID, org.ID):  orgdomain.RoleAdmin,
			memberKey(member.ID, org.ID): orgdomain.RoleMember,
		},
		userOrgs: map[snowflake.ID][]orgdomain.ListItem{
			admin.ID: {{ID: org.ID, Name: org.Name, Slug: org.Slug, Role: orgdomain.RoleAdmin}},
		},
	}
	billing := &fakeBilling{subs: map[snowflake.ID]*subdomain.Subscription{}}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	return &gateFixture{
		gate:     NewGate(zap.NewNop(), NewResolver(), identity, dir, billing, clk, nil),
		identity: identity,
		dir:      dir,
		billing:  billing,
		clock:    clk,
		adminID:  admin.ID,
		org:      org,
	}
}

func (f *gateFixture) decide(t *testing.T, req Request) Decision {
	t.Helper()
	d, err := f.gate.Decide(context.Background(), req)
	require.NoError(t, err)
	return d
}

func TestGateMissingHostPassesThrough(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Path: "/anything"})
	assert.Equal(t, DecisionPass, d.Kind)
	assert.Nil(t, d.Tenancy)
}

func TestGateMainDomainLandingPage(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "lvh.me:3000", Path: "/"})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGateMainDomainAnonymousRedirectsToLogin(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "lvh.me:3000", Path: "/dashboard"})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/login", d.Location)
}

func TestGateMainDomainAnonymousAuthFlowAllowed(t *testing.T) {
	f := newGateFixture(t)

	for _, path := range []string{
		"/login", "/signup", "/forgot-password",
		"/reset-password", "/reset-password/token-abc",
		"/verify-email", "/auth/callback",
	} {
		d := f.decide(t, Request{Host: "lvh.me:3000", Path: path})
		assert.Equal(t, DecisionPass, d.Kind, "path %s", path)
	}
}

func TestGateMainDomainUserWithOrgRedirectsToTenant(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{
		Host:         "lvh.me:3000",
		Path:         "/dashboard",
		Scheme:       "http",
		SessionToken: adminToken,
	})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "http://acme.lvh.me:3000/ideas", d.Location)
}

func TestGateMainDomainWwwHostRedirectsToApexTenantOrigin(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{
		Host:         "www.hintboard.io",
		Path:         "/dashboard",
		Scheme:       "https",
		SessionToken: adminToken,
	})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "https://acme.hintboard.io/ideas", d.Location)
}

func TestGateMainDomainUserWithOrgCanManageOrganizations(t *testing.T) {
	f := newGateFixture(t)

	for _, path := range []string{"/organizations", "/organizations/new"} {
		d := f.decide(t, Request{Host: "lvh.me:3000", Path: path, SessionToken: adminToken})
		assert.Equal(t, DecisionPass, d.Kind, "path %s", path)
	}
}

func TestGateMainDomainUserWithoutOrgRedirectsToOrganizations(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "lvh.me:3000", Path: "/dashboard", SessionToken: guestToken})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/organizations", d.Location)

	d = f.decide(t, Request{Host: "lvh.me:3000", Path: "/organizations", SessionToken: guestToken})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGateUnknownTenantRewritesToNotFound(t *testing.T) {
	f := newGateFixture(t)

	for _, token := range []string{"", adminToken} {
		d := f.decide(t, Request{
			Host:         "unknown-org.lvh.me:3000",
			Path:         "/ideas",
			SessionToken: token,
		})
		assert.Equal(t, DecisionRewrite, d.Kind)
		assert.Equal(t, "/404", d.Location)
		assert.Nil(t, d.Tenancy)
	}
}

func TestGateTenantRootRedirectsToIdeas(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/"})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/ideas", d.Location)
}

func TestGateTenantRootRedirectKeepsQuery(t *testing.T) {
	f := newGateFixture(t)

	q := url.Values{}
	q.Set(ViewAsCustomerParam, "true")
	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/", Query: q, SessionToken: adminToken})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/ideas?viewAsCustomer=true", d.Location)
}

func TestGateTenantSettingsRequiresSession(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/settings"})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/ideas", d.Location)

	d = f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/settings/billing"})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/ideas", d.Location)
}

func TestGateTenantAnonymousPassesAsGuest(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas"})
	require.Equal(t, DecisionPass, d.Kind)
	require.NotNil(t, d.Tenancy)

	h := d.Tenancy.Headers()
	assert.Equal(t, f.org.ID.String(), h[HeaderOrgID])
	assert.Equal(t, "Acme Inc", h[HeaderOrgName])
	assert.Equal(t, orgdomain.RoleGuest, h[HeaderOrgRole])
	assert.Equal(t, orgdomain.RoleGuest, h[HeaderOrgActualRole])
	assert.Equal(t, "https://cdn.example.com/acme.png", h[HeaderOrgLogo])
	assert.Equal(t, "acme", h[HeaderOrgSlug])
	assert.Equal(t, "dark", h[HeaderOrgTheme])
	assert.Equal(t, "false", h[HeaderViewAsCustomer])
	assert.False(t, d.Tenancy.Authenticated)
}

func TestGateTenantMemberRole(t *testing.T) {
	f := newGateFixture(t)

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: memberToken})
	require.Equal(t, DecisionPass, d.Kind)
	require.NotNil(t, d.Tenancy)
	assert.Equal(t, orgdomain.RoleMember, d.Tenancy.EffectiveRole)
	assert.Equal(t, orgdomain.RoleMember, d.Tenancy.ActualRole)
	assert.True(t, d.Tenancy.Authenticated)
}

func TestGateViewAsCustomerDowngradesAdmin(t *testing.T) {
	f := newGateFixture(t)

	q := url.Values{}
	q.Set(ViewAsCustomerParam, "true")
	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", Query: q, SessionToken: adminToken})
	require.Equal(t, DecisionPass, d.Kind)
	require.NotNil(t, d.Tenancy)

	h := d.Tenancy.Headers()
	assert.Equal(t, orgdomain.RoleGuest, h[HeaderOrgRole])
	assert.Equal(t, orgdomain.RoleAdmin, h[HeaderOrgActualRole])
	assert.Equal(t, "true", h[HeaderViewAsCustomer])
}

func TestGateViewAsCustomerDoesNotDowngradeMember(t *testing.T) {
	f := newGateFixture(t)

	q := url.Values{}
	q.Set(ViewAsCustomerParam, "true")
	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", Query: q, SessionToken: memberToken})
	require.Equal(t, DecisionPass, d.Kind)
	assert.Equal(t, orgdomain.RoleMember, d.Tenancy.EffectiveRole)
}

func TestGateExpiredTrialRedirectsAdmin(t *testing.T) {
	f := newGateFixture(t)

	past := f.clock.Now().Add(-time.Hour)
	f.billing.subs[f.adminID] = &subdomain.Subscription{
		UserID:      f.adminID,
		Status:      subdomain.StatusTrialing,
		TrialEndsAt: &past,
	}

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/plan-required", d.Location)

	// No redirect loop on the plan page itself.
	d = f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/plan-required", SessionToken: adminToken})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGateActiveTrialDoesNotRedirect(t *testing.T) {
	f := newGateFixture(t)

	future := f.clock.Now().Add(48 * time.Hour)
	f.billing.subs[f.adminID] = &subdomain.Subscription{
		UserID:      f.adminID,
		Status:      subdomain.StatusTrialing,
		TrialEndsAt: &future,
	}

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	assert.Equal(t, DecisionPass, d.Kind)

	f.clock.Advance(72 * time.Hour)
	d = f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	assert.Equal(t, DecisionRedirect, d.Kind)
	assert.Equal(t, "/plan-required", d.Location)
}

func TestGateTrialCheckSkipsNonAdmin(t *testing.T) {
	f := newGateFixture(t)

	// Even with an expired trial on record, members are not billing-gated.
	memberUser := f.identity.users[memberToken]
	past := f.clock.Now().Add(-time.Hour)
	f.billing.subs[memberUser.ID] = &subdomain.Subscription{
		UserID:      memberUser.ID,
		Status:      subdomain.StatusTrialing,
		TrialEndsAt: &past,
	}

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: memberToken})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGatePastDueStatusDoesNotTrialRedirect(t *testing.T) {
	f := newGateFixture(t)

	past := f.clock.Now().Add(-time.Hour)
	f.billing.subs[f.adminID] = &subdomain.Subscription{
		UserID:      f.adminID,
		Status:      subdomain.StatusPastDue,
		TrialEndsAt: &past,
	}

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGateSubscriptionLookupFailureFailsOpen(t *testing.T) {
	f := newGateFixture(t)
	f.billing.err = errors.New("billing backend down")

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	assert.Equal(t, DecisionPass, d.Kind)
}

func TestGateMembershipLookupFailureFailsOpenToGuest(t *testing.T) {
	f := newGateFixture(t)
	f.dir.memberErr = errors.New("membership backend down")

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: adminToken})
	require.Equal(t, DecisionPass, d.Kind)
	assert.Equal(t, orgdomain.RoleGuest, d.Tenancy.EffectiveRole)
	assert.Equal(t, orgdomain.RoleGuest, d.Tenancy.ActualRole)
}

func TestGateOrganizationLookupFailureFailsClosed(t *testing.T) {
	f := newGateFixture(t)
	f.dir.slugErr = errors.New("directory backend down")

	_, err := f.gate.Decide(context.Background(), Request{Host: "acme.lvh.me:3000", Path: "/ideas"})
	assert.Error(t, err)
}

func TestGateUserLookupFailureFailsClosed(t *testing.T) {
	f := newGateFixture(t)
	f.identity.err = errors.New("identity backend down")

	_, err := f.gate.Decide(context.Background(), Request{
		Host:         "acme.lvh.me:3000",
		Path:         "/ideas",
		SessionToken: adminToken,
	})
	assert.Error(t, err)

	_, err = f.gate.Decide(context.Background(), Request{
		Host:         "lvh.me:3000",
		Path:         "/dashboard",
		SessionToken: adminToken,
	})
	assert.Error(t, err)
}

func TestGateOrgListFailureFailsClosed(t *testing.T) {
	f := newGateFixture(t)
	f.dir.listErr = errors.New("directory backend down")

	_, err := f.gate.Decide(context.Background(), Request{
		Host:         "lvh.me:3000",
		Path:         "/dashboard",
		SessionToken: adminToken,
	})
	assert.Error(t, err)
}

func TestGateThemeDefaultsToLight(t *testing.T) {
	f := newGateFixture(t)
	f.org.Theme = ""

	d := f.decide(t, Request{Host: "acme.lvh.me:3000", Path: "/ideas"})
	require.Equal(t, DecisionPass, d.Kind)
	assert.Equal(t, "light", d.Tenancy.Headers()[HeaderOrgTheme])
}

func TestGateIdempotence(t *testing.T) {
	f := newGateFixture(t)

	req := Request{Host: "acme.lvh.me:3000", Path: "/ideas", SessionToken: memberToken}
	first := f.decide(t, req)
	second := f.decide(t, req)

	assert.Equal(t, first.Kind, second.Kind)
	require.NotNil(t, first.Tenancy)
	require.NotNil(t, second.Tenancy)
	assert.Equal(t, first.Tenancy.Headers(), second.Tenancy.Headers())
}
