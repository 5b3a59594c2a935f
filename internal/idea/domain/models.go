package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Idea statuses, ordered by typical lifecycle.
const (
	StatusOpen       = "OPEN"
	StatusPlanned    = "PLANNED"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusPlanned, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

type Idea struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID  `gorm:"not null;index" json:"org_id"`
	TopicID     *snowflake.ID `gorm:"index" json:"topic_id,omitempty"`
	AuthorID    snowflake.ID  `gorm:"not null" json:"author_id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      string        `gorm:"size:32;not null;default:OPEN" json:"status"`
	VoteCount   int64         `gorm:"not null;default:0" json:"vote_count"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Idea) TableName() string { return "ideas" }

// Vote records one user's support for an idea. The (idea, user) pair is
// unique; double votes surface as duplicate-key errors.
type Vote struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	IdeaID    snowflake.ID `gorm:"not null;uniqueIndex:ux_votes_idea_user,priority:1" json:"idea_id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:ux_votes_idea_user,priority:2;index" json:"user_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Vote) TableName() string { return "votes" }
