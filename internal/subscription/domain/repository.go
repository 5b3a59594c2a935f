package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	// FindLatestByUser returns the newest subscription row for the user.
	FindLatestByUser(ctx context.Context, userID snowflake.ID) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
}
