package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, idea *Idea) error
	FindByID(ctx context.Context, orgID, ideaID snowflake.ID) (*Idea, error)
	// List returns up to limit rows after the cursor id, newest first.
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter, limit int, afterID *snowflake.ID) ([]*Idea, error)
	UpdateStatus(ctx context.Context, orgID, ideaID snowflake.ID, status string) error
	// AddVote inserts the vote and bumps the idea's count in one transaction.
	AddVote(ctx context.Context, vote *Vote) error
	// RemoveVote deletes the vote and drops the count in one transaction.
	RemoveVote(ctx context.Context, ideaID, userID snowflake.ID) error
}
