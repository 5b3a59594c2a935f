package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/clock"
	"github.com/hintboard/hintboard/internal/config"
	"github.com/hintboard/hintboard/internal/subscription/domain"
	"go.uber.org/zap"
)

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	trialDays int
}

func New(log *zap.Logger, cfg config.Config, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:       log.Named("subscription.service"),
		repo:      repo,
		genID:     genID,
		clock:     clk,
		trialDays: cfg.TrialDays,
	}
}

func (s *Service) StartTrial(ctx context.Context, userID snowflake.ID) (*domain.Subscription, error) {
	existing, err := s.repo.FindLatestByUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now().UTC()
	trialEnd := now.AddDate(0, 0, s.trialDays)
	sub := &domain.Subscription{
		ID:          s.genID.Generate(),
		UserID:      userID,
		Status:      domain.StatusTrialing,
		TrialEndsAt: &trialEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("trial started",
		zap.String("user_id", userID.String()),
		zap.Time("trial_ends_at", trialEnd),
	)
	return sub, nil
}

func (s *Service) GetForUser(ctx context.Context, userID snowflake.ID) (*domain.Subscription, error) {
	return s.repo.FindLatestByUser(ctx, userID)
}

func (s *Service) SetStatus(ctx context.Context, userID snowflake.ID, status string) (*domain.Subscription, error) {
	switch status {
	case domain.StatusTrialing, domain.StatusActive, domain.StatusPastDue, domain.StatusCanceled:
	default:
		return nil, domain.ErrInvalidStatus
	}

	sub, err := s.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub.Status = status
	sub.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
