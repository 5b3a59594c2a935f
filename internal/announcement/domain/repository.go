package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, a *Announcement) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Announcement, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID, includeDrafts bool) ([]*Announcement, error)
	Save(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, orgID, id snowflake.ID) error
}
