package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateTopicRequest) (*Topic, error)
	ListForOrg(ctx context.Context, orgID snowflake.ID) ([]*Topic, error)
	GetBySlug(ctx context.Context, orgID snowflake.ID, slug string) (*Topic, error)
	Delete(ctx context.Context, orgID, topicID snowflake.ID) error
}

type CreateTopicRequest struct {
	Name string `json:"name"`
}

var (
	ErrNotFound    = errors.New("topic not found")
	ErrInvalidName = errors.New("invalid_name")
	ErrExists      = errors.New("topic already exists")
)
