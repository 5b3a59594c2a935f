package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/hintboard/hintboard/internal/topic/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:   log.Named("topic.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *Service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateTopicRequest) (*domain.Topic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	topic := &domain.Topic{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *Service) ListForOrg(ctx context.Context, orgID snowflake.ID) ([]*domain.Topic, error) {
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *Service) GetBySlug(ctx context.Context, orgID snowflake.ID, rawSlug string) (*domain.Topic, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawSlug))
	if normalized == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindBySlug(ctx, orgID, normalized)
}

func (s *Service) Delete(ctx context.Context, orgID, topicID snowflake.ID) error {
	return s.repo.Delete(ctx, orgID, topicID)
}
