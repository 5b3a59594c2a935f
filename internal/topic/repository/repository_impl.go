package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/topic/domain"
	"github.com/hintboard/hintboard/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, topic *domain.Topic) error {
	err := r.db.WithContext(ctx).Create(topic).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrExists
	}
	return err
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&topics).Error
	return topics, err
}

func (r *repo) FindBySlug(ctx context.Context, orgID snowflake.ID, slug string) (*domain.Topic, error) {
	var topic domain.Topic
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND slug = ?", orgID, slug).
		First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *repo) Delete(ctx context.Context, orgID, topicID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, topicID).
		Delete(&domain.Topic{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
