package server

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ideadomain "github.com/hintboard/hintboard/internal/idea/domain"
	"github.com/hintboard/hintboard/internal/ratelimit"
	"github.com/hintboard/hintboard/pkg/db/pagination"
)

type listIdeasQuery struct {
	Status  string `form:"status"`
	TopicID string `form:"topic_id"`
	pagination.Pagination
}

func (s *Server) ListIdeas(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var query listIdeasQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := ideadomain.ListFilter{
		Status:     strings.ToUpper(strings.TrimSpace(query.Status)),
		Pagination: query.Pagination,
	}
	if raw := strings.TrimSpace(query.TopicID); raw != "" {
		topicID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("topic_id", "invalid_id", "topic id is not valid"))
			return
		}
		filter.TopicID = &topicID
	}

	ideas, pageInfo, err := s.ideasvc.List(c.Request.Context(), t.OrgID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ideas":     ideas,
		"page_info": pageInfo,
	})
}

func (s *Server) GetIdea(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	ideaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	idea, err := s.ideasvc.Get(c.Request.Context(), t.OrgID, ideaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, idea)
}

func (s *Server) CreateIdea(c *gin.Context) {
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

	var req ideadomain.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.allowSubmission(c, s.limiter.AllowIdea, t.OrgID, user.ID) {
		return
	}

	idea, err := s.ideasvc.Create(c.Request.Context(), t.OrgID, user.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, idea)
}

type updateIdeaStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateIdeaStatus(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	ideaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateIdeaStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	idea, err := s.ideasvc.UpdateStatus(c.Request.Context(), t.OrgID, ideaID, strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, idea)
}

func (s *Server) VoteIdea(c *gin.Context) {
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
	ideaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if !s.allowSubmission(c, s.limiter.AllowVote, t.OrgID, user.ID) {
		return
	}

	idea, err := s.ideasvc.Vote(c.Request.Context(), t.OrgID, ideaID, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, idea)
}

func (s *Server) UnvoteIdea(c *gin.Context) {
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
	ideaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	idea, err := s.ideasvc.Unvote(c.Request.Context(), t.OrgID, ideaID, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, idea)
}

// allowSubmission applies the write throttle. Limiter failures log and allow;
// denials answer 429 with Retry-After.
func (s *Server) allowSubmission(c *gin.Context, allow func(ctx context.Context, orgID, userID string) (*ratelimit.Result, error), orgID, userID snowflake.ID) bool {
	if !s.limiter.Enabled() {
		return true
	}

	res, err := allow(c.Request.Context(), orgID.String(), userID.String())
	if err != nil {
		s.log.Warn("rate limiter unavailable, allowing write", zap.Error(err))
	}
	if res.Allowed {
		return true
	}

	retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
		Type:    "rate_limited",
		Message: "too many submissions, slow down",
	}})
	return false
}

// pathID parses a snowflake path parameter, answering 400 itself on failure.
func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_id", "identifier is not valid"))
		return 0, false
	}
	return id, true
}
