package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
)

// ListAnnouncements returns published posts; admins may ask for drafts too
// with ?include_drafts=true.
func (s *Server) ListAnnouncements(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	includeDrafts := c.Query("include_drafts") == "true" &&
		t.EffectiveRole == organizationdomain.RoleAdmin

	announcements, err := s.annsvc.List(c.Request.Context(), t.OrgID, includeDrafts)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (s *Server) GetAnnouncement(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	announcement, err := s.annsvc.Get(c.Request.Context(), t.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Drafts are invisible to everyone below admin.
	if !announcement.Published() && t.EffectiveRole != organizationdomain.RoleAdmin {
		AbortWithError(c, announcementdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, announcement)
}

func (s *Server) CreateAnnouncement(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req announcementdomain.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	announcement, err := s.annsvc.Create(c.Request.Context(), t.OrgID, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

func (s *Server) UpdateAnnouncement(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req announcementdomain.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	announcement, err := s.annsvc.Update(c.Request.Context(), t.OrgID, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcement)
}

func (s *Server) PublishAnnouncement(c *gin.Context) {
	s.setAnnouncementPublication(c, s.annsvc.Publish)
}

func (s *Server) UnpublishAnnouncement(c *gin.Context) {
	s.setAnnouncementPublication(c, s.annsvc.Unpublish)
}

func (s *Server) DeleteAnnouncement(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.annsvc.Delete(c.Request.Context(), t.OrgID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) setAnnouncementPublication(c *gin.Context, op func(ctx context.Context, orgID, id snowflake.ID) (*announcementdomain.Announcement, error)) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	announcement, err := op(c.Request.Context(), t.OrgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcement)
}
