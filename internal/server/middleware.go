package server

import (
	"strings"

	"github.com/agentspace/agentspace/internal/agencyctx"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	obscontext "github.com/agentspace/agentspace/internal/observability/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const agentIDHeader = "X-Agent-Id"

// RequireAgent resolves the calling agent from the X-Agent-Id header
// and binds the tenant identity to the request context. Every route
// behind it is scoped to that agent's agency and visibility.
func (s *Server) RequireAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(agentIDHeader))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		agentID, err := uuid.Parse(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		agent, err := s.agentRepo.FindByIDAnyAgency(ctx, s.db, agentID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if agent == nil || !agent.IsActive {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx = agencyctx.WithIdentity(ctx, agencyctx.Identity{
			AgentID:  agent.ID,
			AgencyID: agent.AgencyID,
			IsAdmin:  agent.Role == agentdomain.RoleAdmin,
		})
		ctx = obscontext.WithAgencyID(ctx, agent.AgencyID.String())
		ctx = obscontext.WithActorID(ctx, agent.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
