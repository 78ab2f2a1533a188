package server

import (
	"net/http"
	"strings"

	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDeal(c *gin.Context) {
	var req dealdomain.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dealSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDeals(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CarrierID         string `form:"carrier_id"`
		ProductID         string `form:"product_id"`
		Status            string `form:"status"`
		SubmittedFrom     string `form:"submitted_from"`
		SubmittedTo       string `form:"submitted_to"`
		IncludeFullAgency string `form:"include_full_agency"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	submittedFrom, err := parseOptionalTime(query.SubmittedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("submitted_from", "invalid_submitted_from", "invalid submitted_from"))
		return
	}
	submittedTo, err := parseOptionalTime(query.SubmittedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("submitted_to", "invalid_submitted_to", "invalid submitted_to"))
		return
	}
	includeFullAgency, err := parseOptionalBool(query.IncludeFullAgency)
	if err != nil {
		AbortWithError(c, newValidationError("include_full_agency", "invalid_include_full_agency", "invalid include_full_agency"))
		return
	}

	resp, err := s.dealSvc.List(c.Request.Context(), dealdomain.ListDealRequest{
		PageToken:         query.PageToken,
		PageSize:          int32(query.PageSize),
		CarrierID:         strings.TrimSpace(query.CarrierID),
		ProductID:         strings.TrimSpace(query.ProductID),
		Status:            strings.TrimSpace(query.Status),
		SubmittedFrom:     submittedFrom,
		SubmittedTo:       submittedTo,
		IncludeFullAgency: includeFullAgency != nil && *includeFullAgency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDeal(c *gin.Context) {
	resp, err := s.dealSvc.GetByID(c.Request.Context(), dealdomain.GetDealRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDeal(c *gin.Context) {
	var req dealdomain.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.dealSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDealStatus(c *gin.Context) {
	var req dealdomain.UpdateDealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.dealSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDeal(c *gin.Context) {
	err := s.dealSvc.Delete(c.Request.Context(), dealdomain.DeleteDealRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
