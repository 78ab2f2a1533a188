package server

import (
	"net/http"
	"strings"

	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	"github.com/gin-gonic/gin"
)

type createCarrierRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) CreateCarrier(c *gin.Context) {
	var req createCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.carrierSvc.Create(c.Request.Context(), carrierdomain.CreateCarrierRequest{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCarriers(c *gin.Context) {
	resp, err := s.carrierSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"carriers": resp}})
}

func (s *Server) GetCarrier(c *gin.Context) {
	resp, err := s.carrierSvc.GetByID(c.Request.Context(), carrierdomain.GetCarrierRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upsertStatusMappingRequest struct {
	RawStatus          string  `json:"raw_status"`
	StandardizedStatus string  `json:"standardized_status"`
	Impact             string  `json:"impact"`
	Placement          *string `json:"placement"`
}

func (s *Server) UpsertStatusMapping(c *gin.Context) {
	var req upsertStatusMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.carrierSvc.UpsertStatusMapping(c.Request.Context(), carrierdomain.UpsertStatusMappingRequest{
		CarrierID:          strings.TrimSpace(c.Param("id")),
		RawStatus:          req.RawStatus,
		StandardizedStatus: req.StandardizedStatus,
		Impact:             req.Impact,
		Placement:          req.Placement,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListStatusMappings(c *gin.Context) {
	resp, err := s.carrierSvc.ListStatusMappings(c.Request.Context(), carrierdomain.ListStatusMappingsRequest{
		CarrierID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status_mappings": resp}})
}
