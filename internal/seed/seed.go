// Package seed bootstraps a demo board for local development.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
	"github.com/hintboard/hintboard/internal/auth/password"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
	subscriptiondomain "github.com/hintboard/hintboard/internal/subscription/domain"
	topicdomain "github.com/hintboard/hintboard/internal/topic/domain"
	"gorm.io/gorm"
)

const (
	demoOrgName       = "Acme"
	demoOrgSlug       = "acme"
	demoAdminEmail    = "admin@hintboard.local"
	demoAdminPassword = "password"
	demoAdminDisplay  = "Acme Admin"
	demoTrialDays     = 14
)

// EnsureDemoBoard seeds a demo organization with an admin account, a trial
// subscription, a starter topic and a welcome announcement. Existing rows are
// left untouched, so repeated startups are safe.
func EnsureDemoBoard(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrg(ctx, tx, node)
		if err != nil {
			return err
		}
		admin, err := ensureAdmin(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureMembership(ctx, tx, node, org.ID, admin.ID); err != nil {
			return err
		}
		if err := ensureTrial(ctx, tx, node, admin.ID); err != nil {
			return err
		}
		if err := ensureTopic(ctx, tx, node, org.ID); err != nil {
			return err
		}
		return ensureWelcome(ctx, tx, node, org.ID, admin.ID)
	})
}

func ensureOrg(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", demoOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      demoOrgName,
		Slug:      demoOrgSlug,
		Theme:     organizationdomain.DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", strings.ToLower(demoAdminEmail)).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(demoAdminPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		Email:        strings.ToLower(demoAdminEmail),
		DisplayName:  demoAdminDisplay,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureMembership(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID) error {
	var member organizationdomain.Membership
	err := tx.WithContext(ctx).Where("org_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member = organizationdomain.Membership{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      organizationdomain.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&member).Error
}

func ensureTrial(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	var sub subscriptiondomain.Subscription
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	trialEnd := now.AddDate(0, 0, demoTrialDays)
	sub = subscriptiondomain.Subscription{
		ID:          node.Generate(),
		UserID:      userID,
		Status:      subscriptiondomain.StatusTrialing,
		TrialEndsAt: &trialEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&sub).Error
}

func ensureTopic(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var topic topicdomain.Topic
	err := tx.WithContext(ctx).Where("org_id = ? AND slug = ?", orgID, "general").First(&topic).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	topic = topicdomain.Topic{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      "General",
		Slug:      "general",
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&topic).Error
}

func ensureWelcome(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, authorID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&announcementdomain.Announcement{}).
		Where("org_id = ?", orgID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	welcome := announcementdomain.Announcement{
		ID:          node.Generate(),
		OrgID:       orgID,
		AuthorID:    authorID,
		Title:       "Welcome to your board",
		Body:        "Share ideas, vote on what matters, and follow progress here.",
		PublishedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&welcome).Error
}
