package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	topicdomain "github.com/hintboard/hintboard/internal/topic/domain"
)

func (s *Server) ListTopics(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	topics, err := s.topicsvc.ListForOrg(c.Request.Context(), t.OrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) CreateTopic(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req topicdomain.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	topic, err := s.topicsvc.Create(c.Request.Context(), t.OrgID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, topic)
}

func (s *Server) DeleteTopic(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.topicsvc.Delete(c.Request.Context(), t.OrgID, topicID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
