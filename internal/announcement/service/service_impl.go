package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/announcement/domain"
	"github.com/hintboard/hintboard/internal/clock"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("announcement.service"),
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, orgID, authorID snowflake.ID, req domain.CreateAnnouncementRequest) (*domain.Announcement, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	now := s.clock.Now().UTC()
	a := &domain.Announcement{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		AuthorID:  authorID,
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, orgID, id snowflake.ID) (*domain.Announcement, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, includeDrafts bool) ([]*domain.Announcement, error) {
	return s.repo.ListByOrg(ctx, orgID, includeDrafts)
}

func (s *Service) Update(ctx context.Context, orgID, id snowflake.ID, req domain.UpdateAnnouncementRequest) (*domain.Announcement, error) {
	a, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		a.Title = title
	}
	if req.Body != nil {
		a.Body = strings.TrimSpace(*req.Body)
	}
	a.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Publish(ctx context.Context, orgID, id snowflake.ID) (*domain.Announcement, error) {
	a, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Published() {
		return a, nil
	}

	now := s.clock.Now().UTC()
	a.PublishedAt = &now
	a.UpdatedAt = now
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("announcement published",
		zap.String("org_id", orgID.String()),
		zap.String("announcement_id", id.String()),
	)
	return a, nil
}

func (s *Service) Unpublish(ctx context.Context, orgID, id snowflake.ID) (*domain.Announcement, error) {
	a, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !a.Published() {
		return a, nil
	}

	a.PublishedAt = nil
	a.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	return s.repo.Delete(ctx, orgID, id)
}
