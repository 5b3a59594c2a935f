package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	CreateOrganization(ctx context.Context, org *Organization) error
	AddMember(ctx context.Context, member *Membership) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]ListItem, error)
	FindMembership(ctx context.Context, userID, orgID snowflake.ID) (*Membership, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
