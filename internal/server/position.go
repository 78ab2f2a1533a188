package server

import (
	"net/http"
	"strings"

	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	"github.com/gin-gonic/gin"
)

type createPositionRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func (s *Server) CreatePosition(c *gin.Context) {
	var req createPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.positionSvc.Create(c.Request.Context(), positiondomain.CreatePositionRequest{
		Name:  strings.TrimSpace(req.Name),
		Level: req.Level,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPositions(c *gin.Context) {
	resp, err := s.positionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"positions": resp}})
}

func (s *Server) GetPosition(c *gin.Context) {
	resp, err := s.positionSvc.GetByID(c.Request.Context(), positiondomain.GetPositionRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePositionRequest struct {
	Name  string `json:"name"`
	Level *int   `json:"level"`
}

func (s *Server) UpdatePosition(c *gin.Context) {
	var req updatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.positionSvc.Update(c.Request.Context(), positiondomain.UpdatePositionRequest{
		ID:    strings.TrimSpace(c.Param("id")),
		Name:  strings.TrimSpace(req.Name),
		Level: req.Level,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
