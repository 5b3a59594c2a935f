package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, orgID, authorID snowflake.ID, req CreateAnnouncementRequest) (*Announcement, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*Announcement, error)
	// List returns published posts newest first. includeDrafts widens the
	// result to unpublished posts and is reserved for admins.
	List(ctx context.Context, orgID snowflake.ID, includeDrafts bool) ([]*Announcement, error)
	Update(ctx context.Context, orgID, id snowflake.ID, req UpdateAnnouncementRequest) (*Announcement, error)
	Publish(ctx context.Context, orgID, id snowflake.ID) (*Announcement, error)
	Unpublish(ctx context.Context, orgID, id snowflake.ID) (*Announcement, error)
	Delete(ctx context.Context, orgID, id snowflake.ID) error
}

type CreateAnnouncementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdateAnnouncementRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

var (
	ErrNotFound     = errors.New("announcement not found")
	ErrInvalidTitle = errors.New("invalid_title")
)
