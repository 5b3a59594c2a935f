package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Membership roles. Guest is derived, never stored: it is the effective role
// for callers without a membership row and for admins in customer view.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// DefaultTheme is applied when an organization has no stored theme.
const DefaultTheme = "light"

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*Organization, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	// GetBySlug fails with ErrNotFound when the slug is unknown; callers must
	// not rely on message matching.
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	// ListForUser returns the caller's organizations ordered by membership
	// creation time, oldest first, ties broken by org id.
	ListForUser(ctx context.Context, userID snowflake.ID) ([]ListItem, error)
	// GetMembership returns nil without error when no row exists.
	GetMembership(ctx context.Context, userID, orgID snowflake.ID) (*Membership, error)
	UpdateSettings(ctx context.Context, userID, orgID snowflake.ID, req UpdateSettingsRequest) (*Organization, error)
}

type CreateOrganizationRequest struct {
	Name string
}

type UpdateSettingsRequest struct {
	Name    *string
	LogoURL *string
	Theme   *string
}

type ListItem struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Slug     string       `json:"slug"`
	Role     string       `json:"role"`
	JoinedAt time.Time    `json:"joined_at"`
}

var (
	ErrNotFound    = errors.New("organization not found")
	ErrInvalidName = errors.New("invalid_name")
	ErrForbidden   = errors.New("forbidden")
)
