package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, orgID, authorID snowflake.ID, req CreateIdeaRequest) (*Idea, error)
	Get(ctx context.Context, orgID, ideaID snowflake.ID) (*Idea, error)
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]*Idea, *pagination.PageInfo, error)
	// UpdateStatus moves an idea along its lifecycle; the caller must already
	// be authorized as an admin.
	UpdateStatus(ctx context.Context, orgID, ideaID snowflake.ID, status string) (*Idea, error)
	// Vote is idempotent-hostile on purpose: a second vote by the same user
	// fails with ErrAlreadyVoted.
	Vote(ctx context.Context, orgID, ideaID, userID snowflake.ID) (*Idea, error)
	Unvote(ctx context.Context, orgID, ideaID, userID snowflake.ID) (*Idea, error)
}

type CreateIdeaRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	TopicID     *snowflake.ID `json:"topic_id,omitempty"`
}

type ListFilter struct {
	Status  string
	TopicID *snowflake.ID
	pagination.Pagination
}
