package server

import (
	"net/http"
	"strings"

	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	"github.com/gin-gonic/gin"
)

type createAgencyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (s *Server) CreateAgency(c *gin.Context) {
	var req createAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agencySvc.Create(c.Request.Context(), agencydomain.CreateAgencyRequest{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.TrimSpace(req.Slug),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgency(c *gin.Context) {
	resp, err := s.agencySvc.GetByID(c.Request.Context(), agencydomain.GetAgencyRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateAgencyRequest struct {
	Name     string         `json:"name"`
	Settings map[string]any `json:"settings"`
}

func (s *Server) UpdateAgency(c *gin.Context) {
	var req updateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agencySvc.Update(c.Request.Context(), agencydomain.UpdateAgencyRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     strings.TrimSpace(req.Name),
		Settings: req.Settings,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
