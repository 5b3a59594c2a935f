package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Announcement is an admin-authored post on a board. It is visible to
// non-admins only once PublishedAt is set.
type Announcement struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	AuthorID    snowflake.ID `gorm:"not null" json:"author_id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Body        string       `gorm:"type:text" json:"body"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Announcement) TableName() string { return "announcements" }

func (a *Announcement) Published() bool { return a.PublishedAt != nil }
