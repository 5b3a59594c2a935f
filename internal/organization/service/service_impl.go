package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/hintboard/hintboard/internal/organization/domain"
	"go.uber.org/zap"
)

const maxSlugAttempts = 5

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:   log.Named("organization.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      orgSlug,
		Theme:     domain.DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}

	member := &domain.Membership{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		UserID:    userID,
		Role:      domain.RoleAdmin,
		CreatedAt: now,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)
	return org, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, rawSlug string) (*domain.Organization, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawSlug))
	if normalized == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindBySlug(ctx, normalized)
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.ListItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetMembership(ctx context.Context, userID, orgID snowflake.ID) (*domain.Membership, error) {
	return s.repo.FindMembership(ctx, userID, orgID)
}

func (s *Service) UpdateSettings(ctx context.Context, userID, orgID snowflake.ID, req domain.UpdateSettingsRequest) (*domain.Organization, error) {
	member, err := s.repo.FindMembership(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.LogoURL != nil {
		fields["logo_url"] = strings.TrimSpace(*req.LogoURL)
	}
	if req.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*req.Theme))
		if theme == "" {
			theme = domain.DefaultTheme
		}
		fields["theme"] = theme
	}

	if err := s.repo.UpdateFields(ctx, orgID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orgID)
}

// uniqueSlug derives a subdomain label from the organization name, suffixing
// on collision. "www" is reserved by the resolver and never issued.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" || base == "www" {
		base = fmt.Sprintf("org-%s", s.genID.Generate().String())
	}

	candidate := base
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt+1)
	}
	return fmt.Sprintf("%s-%s", base, s.genID.Generate().String()), nil
}
