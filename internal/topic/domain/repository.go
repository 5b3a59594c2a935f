package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, topic *Topic) error
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]*Topic, error)
	FindBySlug(ctx context.Context, orgID snowflake.ID, slug string) (*Topic, error)
	Delete(ctx context.Context, orgID, topicID snowflake.ID) error
}
