package server

import (
	"net/http"
	"strings"

	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseAgentID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return uuid.Nil, newValidationError("id", "invalid_id", "invalid id")
	}
	return id, nil
}

type createAgentRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	UplineID   string `json:"upline_id"`
	PositionID string `json:"position_id"`
}

func (s *Server) CreateAgent(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agentSvc.Create(c.Request.Context(), agentdomain.CreateAgentRequest{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       req.Role,
		UplineID:   req.UplineID,
		PositionID: req.PositionID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAgents(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Role              string `form:"role"`
		UplineID          string `form:"upline_id"`
		IsActive          string `form:"is_active"`
		CreatedFrom       string `form:"created_from"`
		CreatedTo         string `form:"created_to"`
		IncludeFullAgency string `form:"include_full_agency"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}
	includeFullAgency, err := parseOptionalBool(query.IncludeFullAgency)
	if err != nil {
		AbortWithError(c, newValidationError("include_full_agency", "invalid_include_full_agency", "invalid include_full_agency"))
		return
	}
	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.agentSvc.List(c.Request.Context(), agentdomain.ListAgentRequest{
		PageToken:         query.PageToken,
		PageSize:          int32(query.PageSize),
		Role:              strings.TrimSpace(query.Role),
		UplineID:          strings.TrimSpace(query.UplineID),
		IsActive:          isActive,
		CreatedFrom:       createdFrom,
		CreatedTo:         createdTo,
		IncludeFullAgency: includeFullAgency != nil && *includeFullAgency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgent(c *gin.Context) {
	resp, err := s.agentSvc.GetByID(c.Request.Context(), agentdomain.GetAgentRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateAgentRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	PositionID string `json:"position_id"`
	IsActive   *bool  `json:"is_active"`
}

func (s *Server) UpdateAgent(c *gin.Context) {
	var req updateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agentSvc.Update(c.Request.Context(), agentdomain.UpdateAgentRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		PositionID: req.PositionID,
		IsActive:   req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type reassignUplineRequest struct {
	UplineID string `json:"upline_id"`
}

func (s *Server) ReassignUpline(c *gin.Context) {
	var req reassignUplineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agentSvc.ReassignUpline(c.Request.Context(), agentdomain.ReassignUplineRequest{
		AgentID:  strings.TrimSpace(c.Param("id")),
		UplineID: strings.TrimSpace(req.UplineID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDownline(c *gin.Context) {
	agentID, err := parseAgentID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		MaxDepth int `form:"max_depth"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	nodes, err := s.hierarchySvc.Downline(c.Request.Context(), agentID, query.MaxDepth)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"agents": nodes}})
}

func (s *Server) GetUplineChain(c *gin.Context) {
	agentID, err := parseAgentID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	chain, err := s.hierarchySvc.UplineChain(c.Request.Context(), agentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"chain": chain}})
}

func (s *Server) CheckUplinePositions(c *gin.Context) {
	agentID, err := parseAgentID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.hierarchySvc.CheckUplinePositions(c.Request.Context(), agentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	complete := true
	for _, entry := range entries {
		if !entry.HasPosition {
			complete = false
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"complete": complete,
		"chain":    entries,
	}})
}
