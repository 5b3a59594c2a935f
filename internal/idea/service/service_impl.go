package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/idea/domain"
	"github.com/hintboard/hintboard/internal/observability/metrics"
	"github.com/hintboard/hintboard/pkg/db/pagination"
	"go.uber.org/zap"
)

const maxTitleLen = 200

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, m *metrics.Metrics) domain.Service {
	return &Service{
		log:     log.Named("idea.service"),
		repo:    repo,
		genID:   genID,
		metrics: m,
	}
}

func (s *Service) Create(ctx context.Context, orgID, authorID snowflake.ID, req domain.CreateIdeaRequest) (*domain.Idea, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLen {
		return nil, domain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	idea := &domain.Idea{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		TopicID:     req.TopicID,
		AuthorID:    authorID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, err
	}

	s.metrics.RecordIdeaCreated(ctx, orgID.String())
	s.log.Info("idea created",
		zap.String("org_id", orgID.String()),
		zap.String("idea_id", idea.ID.String()),
	)
	return idea, nil
}

func (s *Service) Get(ctx context.Context, orgID, ideaID snowflake.ID) (*domain.Idea, error) {
	return s.repo.FindByID(ctx, orgID, ideaID)
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, filter domain.ListFilter) ([]*domain.Idea, *pagination.PageInfo, error) {
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return nil, nil, domain.ErrInvalidStatus
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var afterID *snowflake.ID
	if filter.PageToken != "" {
		cursor, err := pagination.DecodeCursor(filter.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if cursor.ID != "" {
			id, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				return nil, nil, err
			}
			afterID = &id
		}
	}

	ideas, err := s.repo.List(ctx, orgID, filter, limit+1, afterID)
	if err != nil {
		return nil, nil, err
	}

	ideas, pageInfo := pagination.BuildCursorPageInfo(ideas, limit, func(i *domain.Idea) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: i.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if !pageInfo.HasMore {
		pageInfo.NextPageToken = ""
	}
	return ideas, pageInfo, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orgID, ideaID snowflake.ID, status string) (*domain.Idea, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, orgID, ideaID, status); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orgID, ideaID)
}

func (s *Service) Vote(ctx context.Context, orgID, ideaID, userID snowflake.ID) (*domain.Idea, error) {
	// Scope check before writing; votes must not cross organizations.
	if _, err := s.repo.FindByID(ctx, orgID, ideaID); err != nil {
		return nil, err
	}

	vote := &domain.Vote{
		ID:        s.genID.Generate(),
		IdeaID:    ideaID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddVote(ctx, vote); err != nil {
		return nil, err
	}

	s.metrics.RecordVoteCast(ctx, orgID.String())
	return s.repo.FindByID(ctx, orgID, ideaID)
}

func (s *Service) Unvote(ctx context.Context, orgID, ideaID, userID snowflake.ID) (*domain.Idea, error) {
	if _, err := s.repo.FindByID(ctx, orgID, ideaID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveVote(ctx, ideaID, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orgID, ideaID)
}
