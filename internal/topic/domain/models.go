package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Topic groups ideas on one board. Slug is unique per organization.
type Topic struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_topics_org_slug,priority:1" json:"org_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_topics_org_slug,priority:2" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Topic) TableName() string { return "topics" }
