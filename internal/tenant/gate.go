package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/clock"
	"github.com/hintboard/hintboard/internal/observability/metrics"
	orgdomain "github.com/hintboard/hintboard/internal/organization/domain"
	subdomain "github.com/hintboard/hintboard/internal/subscription/domain"
	"go.uber.org/zap"
)

// ViewAsCustomerParam toggles the admin role downgrade for the request. It is
// read-only to the gate and preserved on same-tenant redirects.
const ViewAsCustomerParam = "viewAsCustomer"

// Paths reachable on the main domain without a session.
var authFlowPaths = []string{
	"/login",
	"/signup",
	"/forgot-password",
	"/reset-password",
	"/verify-email",
	"/auth/callback",
}

// Identity resolves a session token to a user. A missing, expired or revoked
// session yields (nil, nil); only infrastructure failures return an error.
type Identity interface {
	CurrentUser(ctx context.Context, sessionToken string) (*authdomain.User, error)
}

// Directory is the organization lookup surface the gate consumes. GetBySlug
// fails with orgdomain.ErrNotFound for unknown slugs; GetMembership returns
// (nil, nil) when the caller has no membership row.
type Directory interface {
	GetBySlug(ctx context.Context, slug string) (*orgdomain.Organization, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]orgdomain.ListItem, error)
	GetMembership(ctx context.Context, userID, orgID snowflake.ID) (*orgdomain.Membership, error)
}

// Billing exposes the subscription lookup used by the trial check.
type Billing interface {
	GetForUser(ctx context.Context, userID snowflake.ID) (*subdomain.Subscription, error)
}

type DecisionKind int

const (
	DecisionPass DecisionKind = iota
	DecisionRedirect
	DecisionRewrite
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionPass:
		return "pass"
	case DecisionRedirect:
		return "redirect"
	case DecisionRewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

// Request carries the per-request state the gate decides on.
type Request struct {
	Host         string
	Path         string
	Query        url.Values
	Scheme       string
	SessionToken string
}

// Decision is the gate's verdict. Tenancy is set only on a tenant-subdomain
// pass-through; Location only on redirects and rewrites.
type Decision struct {
	Kind     DecisionKind
	Location string
	Tenancy  *Tenancy
}

func pass() Decision              { return Decision{Kind: DecisionPass} }
func redirect(to string) Decision { return Decision{Kind: DecisionRedirect, Location: to} }
func rewrite(to string) Decision  { return Decision{Kind: DecisionRewrite, Location: to} }
func passWith(t Tenancy) Decision { return Decision{Kind: DecisionPass, Tenancy: &t} }

// Gate decides, per request, whether to pass, redirect or rewrite, and
// computes the tenant context attached on pass-through. It only ever reads;
// per-request state is never shared across invocations.
type Gate struct {
	log      *zap.Logger
	resolver Resolver
	identity Identity
	orgs     Directory
	billing  Billing
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func NewGate(
	log *zap.Logger,
	resolver Resolver,
	identity Identity,
	orgs Directory,
	billing Billing,
	clk clock.Clock,
	m *metrics.Metrics,
) *Gate {
	return &Gate{
		log:      log.Named("tenant.gate"),
		resolver: resolver,
		identity: identity,
		orgs:     orgs,
		billing:  billing,
		clock:    clk,
		metrics:  m,
	}
}

// Decide evaluates the decision table. User and organization lookup failures
// propagate; membership and subscription lookups degrade instead (guest role,
// skipped trial check).
func (g *Gate) Decide(ctx context.Context, req Request) (Decision, error) {
	d, err := g.decide(ctx, req)
	if err != nil {
		return Decision{}, err
	}
	g.metrics.RecordGateDecision(ctx, d.Kind.String())
	return d, nil
}

func (g *Gate) decide(ctx context.Context, req Request) (Decision, error) {
	if strings.TrimSpace(req.Host) == "" {
		return pass(), nil
	}

	slug, ok := g.resolver.Subdomain(req.Host)
	if !ok {
		return g.decideMainDomain(ctx, req)
	}
	return g.decideTenant(ctx, req, slug)
}

func (g *Gate) decideMainDomain(ctx context.Context, req Request) (Decision, error) {
	if req.Path == "/" {
		return pass(), nil
	}

	user, err := g.currentUser(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	if user == nil {
		for _, p := range authFlowPaths {
			if pathMatches(req.Path, p) {
				return pass(), nil
			}
		}
		return redirect("/login"), nil
	}

	orgs, err := g.orgs.ListForUser(ctx, user.ID)
	if err != nil {
		return Decision{}, err
	}

	if len(orgs) > 0 {
		if req.Path == "/organizations" || req.Path == "/organizations/new" {
			return pass(), nil
		}
		return redirect(tenantOrigin(req.Scheme, orgs[0].Slug, req.Host) + "/ideas"), nil
	}
	if pathMatches(req.Path, "/organizations") {
		return pass(), nil
	}
	return redirect("/organizations"), nil
}

func (g *Gate) decideTenant(ctx context.Context, req Request, slug string) (Decision, error) {
	org, err := g.orgs.GetBySlug(ctx, slug)
	if errors.Is(err, orgdomain.ErrNotFound) {
		g.log.Info("unknown tenant slug",
			zap.String("slug", slug),
			zap.String("host", req.Host),
			zap.String("path", req.Path),
		)
		return rewrite("/404"), nil
	}
	if err != nil {
		return Decision{}, err
	}

	if req.Path == "/" {
		return redirect(withQuery("/ideas", req.Query)), nil
	}

	user, err := g.currentUser(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	if user == nil && strings.HasPrefix(req.Path, "/settings") {
		return redirect("/ideas"), nil
	}

	actualRole := orgdomain.RoleGuest
	if user != nil {
		member, err := g.orgs.GetMembership(ctx, user.ID, org.ID)
		if err != nil {
			// Fail open to guest; a degraded role beats a failed request.
			g.log.Warn("membership lookup failed",
				zap.String("org_id", org.ID.String()),
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		} else if member != nil {
			actualRole = member.Role
		}
	}

	viewAsCustomer := req.Query.Get(ViewAsCustomerParam) == "true"
	effectiveRole := actualRole
	if viewAsCustomer && actualRole == orgdomain.RoleAdmin {
		effectiveRole = orgdomain.RoleGuest
	}

	if actualRole == orgdomain.RoleAdmin && req.Path != "/plan-required" {
		if d, ok := g.trialRedirect(ctx, user.ID); ok {
			return d, nil
		}
	}

	t := Tenancy{
		OrgID:          org.ID,
		OrgName:        org.Name,
		Slug:           org.Slug,
		LogoURL:        org.LogoURL,
		Theme:          org.Theme,
		EffectiveRole:  effectiveRole,
		ActualRole:     actualRole,
		ViewAsCustomer: viewAsCustomer,
	}
	if t.Theme == "" {
		t.Theme = orgdomain.DefaultTheme
	}
	if user != nil {
		t.UserID = user.ID
		t.Authenticated = true
	}
	return passWith(t), nil
}

// trialRedirect reports whether an expired trial forces the admin to the
// plan-required page. Lookup failures skip the check rather than block.
func (g *Gate) trialRedirect(ctx context.Context, userID snowflake.ID) (Decision, bool) {
	sub, err := g.billing.GetForUser(ctx, userID)
	if errors.Is(err, subdomain.ErrNotFound) {
		return Decision{}, false
	}
	if err != nil {
		g.log.Warn("subscription lookup failed, skipping trial check",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return Decision{}, false
	}
	if sub.TrialExpired(g.clock.Now()) {
		return redirect("/plan-required"), true
	}
	return Decision{}, false
}

func (g *Gate) currentUser(ctx context.Context, req Request) (*authdomain.User, error) {
	if req.SessionToken == "" {
		return nil, nil
	}
	return g.identity.CurrentUser(ctx, req.SessionToken)
}

func pathMatches(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// tenantOrigin prepends the tenant slug to the apex host, keeping any port.
// A www label is the main site, not part of the apex, so it is dropped first:
// www.hintboard.io becomes acme.hintboard.io, never acme.www.hintboard.io.
func tenantOrigin(scheme, slug, host string) string {
	if scheme == "" {
		scheme = "http"
	}
	if len(host) > 4 && strings.EqualFold(host[:4], mainDomainLabel+".") {
		host = host[4:]
	}
	return fmt.Sprintf("%s://%s.%s", scheme, slug, host)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
