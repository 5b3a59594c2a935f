package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	organizationdomain "github.com/hintboard/hintboard/internal/organization/domain"
)

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type UpdateOrganizationSettingsRequest struct {
	Name    *string `json:"name,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
	Theme   *string `json:"theme,omitempty"`
}

// CreateOrganization provisions a tenant and makes the caller its admin.
func (s *Server) CreateOrganization(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "organization name is required"))
		return
	}

	org, err := s.orgsvc.Create(c.Request.Context(), user.ID, organizationdomain.CreateOrganizationRequest{
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgs, err := s.orgsvc.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns the tenant resolved from the request host.
func (s *Server) GetOrganization(c *gin.Context) {
	t, ok := currentTenancy(c)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	org, err := s.orgsvc.GetByID(c.Request.Context(), t.OrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": org,
		"role":         t.EffectiveRole,
	})
}

func (s *Server) UpdateOrganizationSettings(c *gin.Context) {
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

	var req UpdateOrganizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.orgsvc.UpdateSettings(c.Request.Context(), user.ID, t.OrgID, organizationdomain.UpdateSettingsRequest{
		Name:    req.Name,
		LogoURL: req.LogoURL,
		Theme:   req.Theme,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}
