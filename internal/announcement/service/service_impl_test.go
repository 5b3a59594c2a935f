package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/hintboard/hintboard/internal/announcement/domain"
	"github.com/hintboard/hintboard/internal/announcement/repository"
	"github.com/hintboard/hintboard/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Announcement{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	return New(zap.NewNop(), repository.New(db), node, clk), node, clk
}

func TestPublishLifecycle(t *testing.T) {
	svc, node, clk := newTestService(t)
	orgID, authorID := node.Generate(), node.Generate()

	a, err := svc.Create(context.Background(), orgID, authorID, domain.CreateAnnouncementRequest{
		Title: "Maintenance window",
		Body:  "Saturday 02:00 UTC",
	})
	require.NoError(t, err)
	assert.False(t, a.Published())

	clk.Advance(time.Hour)
	published, err := svc.Publish(context.Background(), orgID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, clk.Now(), published.PublishedAt.UTC())

	// Publishing again keeps the original timestamp.
	clk.Advance(time.Hour)
	again, err := svc.Publish(context.Background(), orgID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, published.PublishedAt.UTC(), again.PublishedAt.UTC())

	unpublished, err := svc.Unpublish(context.Background(), orgID, a.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.Published())
}

func TestListHidesDraftsFromNonAdmins(t *testing.T) {
	svc, node, _ := newTestService(t)
	orgID, authorID := node.Generate(), node.Generate()

	draft, err := svc.Create(context.Background(), orgID, authorID, domain.CreateAnnouncementRequest{Title: "Draft"})
	require.NoError(t, err)
	live, err := svc.Create(context.Background(), orgID, authorID, domain.CreateAnnouncementRequest{Title: "Live"})
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), orgID, live.ID)
	require.NoError(t, err)

	visible, err := svc.List(context.Background(), orgID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, live.ID, visible[0].ID)

	all, err := svc.List(context.Background(), orgID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, live.ID, all[0].ID)
	assert.Equal(t, draft.ID, all[1].ID)
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	svc, node, _ := newTestService(t)
	orgID, authorID := node.Generate(), node.Generate()

	a, err := svc.Create(context.Background(), orgID, authorID, domain.CreateAnnouncementRequest{Title: "Original"})
	require.NoError(t, err)

	empty := "  "
	_, err = svc.Update(context.Background(), orgID, a.ID, domain.UpdateAnnouncementRequest{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestDeleteScopedToOrg(t *testing.T) {
	svc, node, _ := newTestService(t)
	orgID, otherOrg, authorID := node.Generate(), node.Generate(), node.Generate()

	a, err := svc.Create(context.Background(), orgID, authorID, domain.CreateAnnouncementRequest{Title: "Post"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), otherOrg, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(context.Background(), orgID, a.ID)
	assert.NoError(t, err)
}
