package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/auth/session"
	"github.com/hintboard/hintboard/internal/config"
	ideadomain "github.com/hintboard/hintboard/internal/idea/domain"
	"github.com/hintboard/hintboard/internal/imaging"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
	subscriptiondomain "github.com/hintboard/hintboard/internal/subscription/domain"
	"github.com/hintboard/hintboard/internal/tenant"
	topicdomain "github.com/hintboard/hintboard/internal/topic/domain"
	"github.com/hintboard/hintboard/pkg/db/pagination"
)

type fakeAuthService struct {
	users    map[snowflake.ID]*authdomain.User
	sessions map[string]*authdomain.Session

	signupResult *authdomain.User
	signupErr    error
	loginResult  *authdomain.LoginResult
	loginErr     error
	logoutCalls  int
}

func (f *fakeAuthService) Signup(_ context.Context, req authdomain.SignupRequest) (*authdomain.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	if f.signupResult != nil {
		return f.signupResult, nil
	}
	return &authdomain.User{ID: snowflake.ID(900), Email: req.Email, DisplayName: req.DisplayName}, nil
}

func (f *fakeAuthService) Login(_ context.Context, _ authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthService) Logout(_ context.Context, _ string) error {
	f.logoutCalls++
	return nil
}

func (f *fakeAuthService) Authenticate(_ context.Context, rawToken string) (*authdomain.Session, error) {
	sess, ok := f.sessions[rawToken]
	if !ok {
		return nil, authdomain.ErrSessionNotFound
	}
	return sess, nil
}

func (f *fakeAuthService) GetUser(_ context.Context, id snowflake.ID) (*authdomain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	return user, nil
}

type fakeOrgService struct {
	orgs        map[string]*organizationdomain.Organization
	memberships map[string]string
	userOrgs    map[snowflake.ID][]organizationdomain.ListItem

	created   []organizationdomain.CreateOrganizationRequest
	createErr error
	slugErr   error
	memberErr error
}

func membershipKey(userID, orgID snowflake.ID) string {
	return userID.String() + "|" + orgID.String()
}

func (f *fakeOrgService) Create(_ context.Context, userID snowflake.ID, req organizationdomain.CreateOrganizationRequest) (*organizationdomain.Organization, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &organizationdomain.Organization{ID: snowflake.ID(500), Name: req.Name, Slug: "new-org"}, nil
}

func (f *fakeOrgService) GetByID(_ context.Context, id snowflake.ID) (*organizationdomain.Organization, error) {
	for _, org := range f.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return nil, organizationdomain.ErrNotFound
}

func (f *fakeOrgService) GetBySlug(_ context.Context, slug string) (*organizationdomain.Organization, error) {
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	org, ok := f.orgs[slug]
	if !ok {
		return nil, organizationdomain.ErrNotFound
	}
	return org, nil
}

func (f *fakeOrgService) ListForUser(_ context.Context, userID snowflake.ID) ([]organizationdomain.ListItem, error) {
	return f.userOrgs[userID], nil
}

func (f *fakeOrgService) GetMembership(_ context.Context, userID, orgID snowflake.ID) (*organizationdomain.Membership, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	role, ok := f.memberships[membershipKey(userID, orgID)]
	if !ok {
		return nil, nil
	}
	return &organizationdomain.Membership{OrgID: orgID, UserID: userID, Role: role}, nil
}

func (f *fakeOrgService) UpdateSettings(_ context.Context, userID, orgID snowflake.ID, req organizationdomain.UpdateSettingsRequest) (*organizationdomain.Organization, error) {
	role := f.memberships[membershipKey(userID, orgID)]
	if role != organizationdomain.RoleAdmin {
		return nil, organizationdomain.ErrForbidden
	}
	org, err := f.GetByID(context.Background(), orgID)
	if err != nil {
		return nil, err
	}
	updated := *org
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Theme != nil {
		updated.Theme = *req.Theme
	}
	return &updated, nil
}

type fakeSubscriptionService struct {
	subs       map[snowflake.ID]*subscriptiondomain.Subscription
	trialCalls int
	trialErr   error
}

func (f *fakeSubscriptionService) StartTrial(_ context.Context, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	if f.trialErr != nil {
		return nil, f.trialErr
	}
	f.trialCalls++
	end := time.Now().AddDate(0, 0, 14)
	return &subscriptiondomain.Subscription{UserID: userID, Status: subscriptiondomain.StatusTrialing, TrialEndsAt: &end}, nil
}

func (f *fakeSubscriptionService) GetForUser(_ context.Context, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, subscriptiondomain.ErrNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptionService) SetStatus(_ context.Context, userID snowflake.ID, status string) (*subscriptiondomain.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, subscriptiondomain.ErrNotFound
	}
	sub.Status = status
	return sub, nil
}

type fakeIdeaService struct {
	ideas map[snowflake.ID]*ideadomain.Idea

	createErr error
	voteErr   error
}

func (f *fakeIdeaService) Create(_ context.Context, orgID, authorID snowflake.ID, req ideadomain.CreateIdeaRequest) (*ideadomain.Idea, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &ideadomain.Idea{ID: snowflake.ID(700), OrgID: orgID, AuthorID: authorID, Title: req.Title, Status: ideadomain.StatusOpen}, nil
}

func (f *fakeIdeaService) Get(_ context.Context, orgID, ideaID snowflake.ID) (*ideadomain.Idea, error) {
	idea, ok := f.ideas[ideaID]
	if !ok || idea.OrgID != orgID {
		return nil, ideadomain.ErrNotFound
	}
	return idea, nil
}

func (f *fakeIdeaService) List(_ context.Context, orgID snowflake.ID, _ ideadomain.ListFilter) ([]*ideadomain.Idea, *pagination.PageInfo, error) {
	out := make([]*ideadomain.Idea, 0, len(f.ideas))
	for _, idea := range f.ideas {
		if idea.OrgID == orgID {
			out = append(out, idea)
		}
	}
	return out, &pagination.PageInfo{HasMore: false}, nil
}

func (f *fakeIdeaService) UpdateStatus(_ context.Context, orgID, ideaID snowflake.ID, status string) (*ideadomain.Idea, error) {
	idea, err := f.Get(context.Background(), orgID, ideaID)
	if err != nil {
		return nil, err
	}
	if !ideadomain.ValidStatus(status) {
		return nil, ideadomain.ErrInvalidStatus
	}
	idea.Status = status
	return idea, nil
}

func (f *fakeIdeaService) Vote(_ context.Context, orgID, ideaID, _ snowflake.ID) (*ideadomain.Idea, error) {
	if f.voteErr != nil {
		return nil, f.voteErr
	}
	idea, err := f.Get(context.Background(), orgID, ideaID)
	if err != nil {
		return nil, err
	}
	idea.VoteCount++
	return idea, nil
}

func (f *fakeIdeaService) Unvote(_ context.Context, orgID, ideaID, _ snowflake.ID) (*ideadomain.Idea, error) {
	idea, err := f.Get(context.Background(), orgID, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.VoteCount == 0 {
		return nil, ideadomain.ErrVoteNotFound
	}
	idea.VoteCount--
	return idea, nil
}

type fakeAnnouncementService struct {
	announcements map[snowflake.ID]*announcementdomain.Announcement
}

func (f *fakeAnnouncementService) Create(_ context.Context, orgID, authorID snowflake.ID, req announcementdomain.CreateAnnouncementRequest) (*announcementdomain.Announcement, error) {
	return &announcementdomain.Announcement{ID: snowflake.ID(800), OrgID: orgID, AuthorID: authorID, Title: req.Title, Body: req.Body}, nil
}

func (f *fakeAnnouncementService) Get(_ context.Context, orgID, id snowflake.ID) (*announcementdomain.Announcement, error) {
	a, ok := f.announcements[id]
	if !ok || a.OrgID != orgID {
		return nil, announcementdomain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAnnouncementService) List(_ context.Context, orgID snowflake.ID, includeDrafts bool) ([]*announcementdomain.Announcement, error) {
	out := make([]*announcementdomain.Announcement, 0, len(f.announcements))
	for _, a := range f.announcements {
		if a.OrgID != orgID {
			continue
		}
		if !a.Published() && !includeDrafts {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAnnouncementService) Update(_ context.Context, orgID, id snowflake.ID, req announcementdomain.UpdateAnnouncementRequest) (*announcementdomain.Announcement, error) {
	a, err := f.Get(context.Background(), orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Body != nil {
		a.Body = *req.Body
	}
	return a, nil
}

func (f *fakeAnnouncementService) Publish(_ context.Context, orgID, id snowflake.ID) (*announcementdomain.Announcement, error) {
	a, err := f.Get(context.Background(), orgID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.PublishedAt = &now
	return a, nil
}

func (f *fakeAnnouncementService) Unpublish(_ context.Context, orgID, id snowflake.ID) (*announcementdomain.Announcement, error) {
	a, err := f.Get(context.Background(), orgID, id)
	if err != nil {
		return nil, err
	}
	a.PublishedAt = nil
	return a, nil
}

func (f *fakeAnnouncementService) Delete(_ context.Context, orgID, id snowflake.ID) error {
	if _, err := f.Get(context.Background(), orgID, id); err != nil {
		return err
	}
	delete(f.announcements, id)
	return nil
}

type fakeTopicService struct {
	topics map[snowflake.ID]*topicdomain.Topic
}

func (f *fakeTopicService) Create(_ context.Context, orgID snowflake.ID, req topicdomain.CreateTopicRequest) (*topicdomain.Topic, error) {
	return &topicdomain.Topic{ID: snowflake.ID(600), OrgID: orgID, Name: req.Name, Slug: "topic"}, nil
}

func (f *fakeTopicService) ListForOrg(_ context.Context, orgID snowflake.ID) ([]*topicdomain.Topic, error) {
	out := make([]*topicdomain.Topic, 0, len(f.topics))
	for _, topic := range f.topics {
		if topic.OrgID == orgID {
			out = append(out, topic)
		}
	}
	return out, nil
}

func (f *fakeTopicService) GetBySlug(_ context.Context, orgID snowflake.ID, slug string) (*topicdomain.Topic, error) {
	for _, topic := range f.topics {
		if topic.OrgID == orgID && topic.Slug == slug {
			return topic, nil
		}
	}
	return nil, topicdomain.ErrNotFound
}

func (f *fakeTopicService) Delete(_ context.Context, orgID, topicID snowflake.ID) error {
	topic, ok := f.topics[topicID]
	if !ok || topic.OrgID != orgID {
		return topicdomain.ErrNotFound
	}
	delete(f.topics, topicID)
	return nil
}

// serverFixture wires a Server around in-memory fakes. The session tokens map
// straight onto the fake auth service.
type serverFixture struct {
	server *Server
	engine *gin.Engine

	auth  *fakeAuthService
	orgs  *fakeOrgService
	subs  *fakeSubscriptionService
	ideas *fakeIdeaService
	anns  *fakeAnnouncementService
}

const (
	testAdminToken  = "admin-token"
	testMemberToken = "member-token"
)

var (
	testAdminID        = snowflake.ID(1)
	testMemberID       = snowflake.ID(2)
	testOrgID          = snowflake.ID(10)
	testIdeaID         = snowflake.ID(20)
	testAnnouncementID = snowflake.ID(30)
)

func newServerFixture() *serverFixture {
	gin.SetMode(gin.TestMode)

	org := &organizationdomain.Organization{ID: testOrgID, Name: "Acme", Slug: "acme", Theme: "dark"}
	auth := &fakeAuthService{
		users: map[snowflake.ID]*authdomain.User{
			testAdminID:  {ID: testAdminID, Email: "admin@acme.test", DisplayName: "Admin"},
			testMemberID: {ID: testMemberID, Email: "member@acme.test", DisplayName: "Member"},
		},
		sessions: map[string]*authdomain.Session{
			testAdminToken:  {ID: snowflake.ID(100), UserID: testAdminID, ExpiresAt: time.Now().Add(time.Hour)},
			testMemberToken: {ID: snowflake.ID(101), UserID: testMemberID, ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	orgs := &fakeOrgService{
		orgs: map[string]*organizationdomain.Organization{"acme": org},
		memberships: map[string]string{
			membershipKey(testAdminID, testOrgID):  organizationdomain.RoleAdmin,
			membershipKey(testMemberID, testOrgID): organizationdomain.RoleMember,
		},
		userOrgs: map[snowflake.ID][]organizationdomain.ListItem{
			testAdminID: {{ID: testOrgID, Name: "Acme", Slug: "acme", Role: organizationdomain.RoleAdmin}},
		},
	}
	subs := &fakeSubscriptionService{subs: map[snowflake.ID]*subscriptiondomain.Subscription{}}
	ideas := &fakeIdeaService{ideas: map[snowflake.ID]*ideadomain.Idea{
		testIdeaID: {ID: testIdeaID, OrgID: testOrgID, AuthorID: testMemberID, Title: "Dark mode", Status: ideadomain.StatusOpen, VoteCount: 1},
	}}
	anns := &fakeAnnouncementService{announcements: map[snowflake.ID]*announcementdomain.Announcement{}}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	s := &Server{
		cfg:        config.Config{},
		log:        zap.NewNop(),
		engine:     engine,
		sessions:   session.NewManager(config.Config{}),
		resolver:   tenant.NewResolver(),
		authsvc:    auth,
		orgsvc:     orgs,
		subsvc:     subs,
		topicsvc:   &fakeTopicService{topics: map[snowflake.ID]*topicdomain.Topic{}},
		ideasvc:    ideas,
		annsvc:     anns,
		compressor: imaging.NewCompressor(zap.NewNop()),
	}
	s.registerAuthRoutes()
	s.registerBoardRoutes()

	return &serverFixture{
		server: s,
		engine: engine,
		auth:   auth,
		orgs:   orgs,
		subs:   subs,
		ideas:  ideas,
		anns:   anns,
	}
}

// request runs one request against the fixture. host selects the tenant;
// token, when non-empty, is attached as the session cookie.
func (f *serverFixture) request(method, host, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Host = host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}
	resp := httptest.NewRecorder()
	f.engine.ServeHTTP(resp, req)
	return resp
}
