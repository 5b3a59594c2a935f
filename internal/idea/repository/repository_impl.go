package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/idea/domain"
	"github.com/hintboard/hintboard/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, idea *domain.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *repo) FindByID(ctx context.Context, orgID, ideaID snowflake.ID) (*domain.Idea, error) {
	var idea domain.Idea
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, ideaID).
		First(&idea).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *repo) List(ctx context.Context, orgID snowflake.ID, filter domain.ListFilter, limit int, afterID *snowflake.ID) ([]*domain.Idea, error) {
	q := r.db.WithContext(ctx).Where("org_id = ?", orgID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TopicID != nil {
		q = q.Where("topic_id = ?", *filter.TopicID)
	}
	if afterID != nil {
		// Snowflake ids are time-ordered, so id-descending is newest-first.
		q = q.Where("id < ?", *afterID)
	}

	var ideas []*domain.Idea
	err := q.Order("id DESC").Limit(limit).Find(&ideas).Error
	return ideas, err
}

func (r *repo) UpdateStatus(ctx context.Context, orgID, ideaID snowflake.ID, status string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Idea{}).
		Where("org_id = ? AND id = ?", orgID, ideaID).
		Updates(map[string]any{"status": status, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) AddVote(ctx context.Context, vote *domain.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyVoted
			}
			return err
		}
		return tx.Model(&domain.Idea{}).
			Where("id = ?", vote.IdeaID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error
	})
}

func (r *repo) RemoveVote(ctx context.Context, ideaID, userID snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("idea_id = ? AND user_id = ?", ideaID, userID).Delete(&domain.Vote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrVoteNotFound
		}
		return tx.Model(&domain.Idea{}).
			Where("id = ? AND vote_count > 0", ideaID).
			UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error
	})
}
