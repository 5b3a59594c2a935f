package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Subscription statuses. A brand-new account starts TRIALING; the trial gate
// only ever inspects TrialEndsAt when the status is still TRIALING.
const (
	StatusTrialing = "TRIALING"
	StatusActive   = "ACTIVE"
	StatusPastDue  = "PAST_DUE"
	StatusCanceled = "CANCELED"
)

type Subscription struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"index" json:"user_id"`
	Status      string       `gorm:"size:32" json:"status"`
	TrialEndsAt *time.Time   `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// TrialExpired reports whether the subscription is a trial that has run out
// as of now. Non-trial statuses never expire through this path.
func (s *Subscription) TrialExpired(now time.Time) bool {
	if s.Status != StatusTrialing || s.TrialEndsAt == nil {
		return false
	}
	return !now.Before(*s.TrialEndsAt)
}
