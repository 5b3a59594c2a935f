package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	subscriptiondomain "github.com/hintboard/hintboard/internal/subscription/domain"
)

// GetSubscription reports the caller's billing state. Accounts predating
// trial provisioning simply have no subscription.
func (s *Server) GetSubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	sub, err := s.subsvc.GetForUser(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, subscriptiondomain.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"subscription": nil})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
