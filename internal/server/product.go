package server

import (
	"net/http"
	"strings"

	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	CarrierID string `json:"carrier_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateProductRequest{
		CarrierID: strings.TrimSpace(req.CarrierID),
		Name:      strings.TrimSpace(req.Name),
		Code:      strings.TrimSpace(req.Code),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		CarrierID string `form:"carrier_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductRequest{
		CarrierID: strings.TrimSpace(query.CarrierID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"products": resp}})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), productdomain.GetProductRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upsertCommissionRateRequest struct {
	PositionID string `json:"position_id"`
	ProductID  string `json:"product_id"`
	Percentage string `json:"percentage"`
}

func (s *Server) UpsertCommissionRate(c *gin.Context) {
	var req upsertCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.Upsert(c.Request.Context(), commissiondomain.UpsertRateRequest{
		PositionID: strings.TrimSpace(req.PositionID),
		ProductID:  strings.TrimSpace(req.ProductID),
		Percentage: strings.TrimSpace(req.Percentage),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionRates(c *gin.Context) {
	var query struct {
		ProductID string `form:"product_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListRatesRequest{
		ProductID: strings.TrimSpace(query.ProductID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"commission_rates": resp}})
}
