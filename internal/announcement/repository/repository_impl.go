package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/announcement/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, a *domain.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repo) FindByID(ctx context.Context, orgID, id snowflake.ID) (*domain.Announcement, error) {
	var a domain.Announcement
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID, includeDrafts bool) ([]*domain.Announcement, error) {
	q := r.db.WithContext(ctx).Where("org_id = ?", orgID)
	if !includeDrafts {
		q = q.Where("published_at IS NOT NULL")
	}

	var posts []*domain.Announcement
	err := q.Order("id DESC").Find(&posts).Error
	return posts, err
}

func (r *repo) Save(ctx context.Context, a *domain.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repo) Delete(ctx context.Context, orgID, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Announcement{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
