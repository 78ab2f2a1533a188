package server

import (
	"net/http"
	"strings"

	analyticsdomain "github.com/agentspace/agentspace/internal/analytics/domain"
	debtdomain "github.com/agentspace/agentspace/internal/debt/domain"
	payoutdomain "github.com/agentspace/agentspace/internal/payout/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetExpectedPayout(c *gin.Context) {
	resp, err := s.payoutSvc.ExpectedPayout(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgentPayoutSummary(c *gin.Context) {
	resp, err := s.payoutSvc.AgentSummary(c.Request.Context(), payoutdomain.AgentSummaryRequest{
		AgentID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCarrierPayoutSummaries(c *gin.Context) {
	var query struct {
		IncludeFullAgency string `form:"include_full_agency"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	includeFullAgency, err := parseOptionalBool(query.IncludeFullAgency)
	if err != nil {
		AbortWithError(c, newValidationError("include_full_agency", "invalid_include_full_agency", "invalid include_full_agency"))
		return
	}

	resp, err := s.payoutSvc.CarrierSummaries(c.Request.Context(), payoutdomain.CarrierSummaryRequest{
		IncludeFullAgency: includeFullAgency != nil && *includeFullAgency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"carriers": resp}})
}

func (s *Server) GetDebt(c *gin.Context) {
	resp, err := s.debtSvc.Debt(c.Request.Context(), debtdomain.DebtRequest{
		AgentID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductionDistribution(c *gin.Context) {
	resp, err := s.analyticsSvc.ProductionDistribution(c.Request.Context(), analyticsdomain.ProductionDistributionRequest{
		AgentID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLeaderboard(c *gin.Context) {
	var query struct {
		IncludeFullAgency string `form:"include_full_agency"`
		Limit             int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	includeFullAgency, err := parseOptionalBool(query.IncludeFullAgency)
	if err != nil {
		AbortWithError(c, newValidationError("include_full_agency", "invalid_include_full_agency", "invalid include_full_agency"))
		return
	}

	entries, err := s.analyticsSvc.Leaderboard(c.Request.Context(), analyticsdomain.LeaderboardRequest{
		IncludeFullAgency: includeFullAgency != nil && *includeFullAgency,
		Limit:             query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"leaderboard": entries}})
}

func (s *Server) GetAnalytics(c *gin.Context) {
	var query struct {
		Scope     string `form:"scope"`
		AgentID   string `form:"agent_id"`
		AsOf      string `form:"as_of"`
		CarrierID string `form:"carrier_id"`
		Windows   string `form:"windows"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	asOf, err := parseOptionalTime(query.AsOf, true)
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_as_of", "invalid as_of"))
		return
	}
	windows, err := parseWindowList(query.Windows)
	if err != nil {
		AbortWithError(c, newValidationError("windows", "invalid_windows", "invalid windows"))
		return
	}

	resp, err := s.analyticsSvc.Aggregate(c.Request.Context(), analyticsdomain.AggregateRequest{
		Scope:     strings.TrimSpace(query.Scope),
		AgentID:   strings.TrimSpace(query.AgentID),
		AsOf:      asOf,
		CarrierID: strings.TrimSpace(query.CarrierID),
		Windows:   windows,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
