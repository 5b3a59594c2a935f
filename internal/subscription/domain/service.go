package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// StartTrial provisions a TRIALING subscription for a new user. Calling it
	// again for the same user returns the existing row unchanged.
	StartTrial(ctx context.Context, userID snowflake.ID) (*Subscription, error)
	// GetForUser returns the user's latest subscription, or ErrNotFound when
	// none was ever provisioned.
	GetForUser(ctx context.Context, userID snowflake.ID) (*Subscription, error)
	SetStatus(ctx context.Context, userID snowflake.ID, status string) (*Subscription, error)
}
