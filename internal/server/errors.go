package server

import (
	"errors"
	"net/http"
	"strings"

	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	analyticsdomain "github.com/agentspace/agentspace/internal/analytics/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	debtdomain "github.com/agentspace/agentspace/internal/debt/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	payoutdomain "github.com/agentspace/agentspace/internal/payout/domain"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, agencydomain.ErrInvalidName),
		errors.Is(err, agencydomain.ErrInvalidSlug),
		errors.Is(err, agencydomain.ErrInvalidID),
		errors.Is(err, agentdomain.ErrInvalidName),
		errors.Is(err, agentdomain.ErrInvalidEmail),
		errors.Is(err, agentdomain.ErrInvalidRole),
		errors.Is(err, agentdomain.ErrInvalidID),
		errors.Is(err, agentdomain.ErrInvalidUpline),
		errors.Is(err, agentdomain.ErrInvalidPosition),
		errors.Is(err, positiondomain.ErrInvalidName),
		errors.Is(err, positiondomain.ErrInvalidLevel),
		errors.Is(err, positiondomain.ErrInvalidID),
		errors.Is(err, carrierdomain.ErrInvalidName),
		errors.Is(err, carrierdomain.ErrInvalidCode),
		errors.Is(err, carrierdomain.ErrInvalidID),
		errors.Is(err, carrierdomain.ErrInvalidStatus),
		errors.Is(err, carrierdomain.ErrInvalidImpact),
		errors.Is(err, carrierdomain.ErrInvalidPlacement),
		errors.Is(err, productdomain.ErrInvalidCarrier),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidCode),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, commissiondomain.ErrInvalidPosition),
		errors.Is(err, commissiondomain.ErrInvalidProduct),
		errors.Is(err, commissiondomain.ErrInvalidPercentage),
		errors.Is(err, dealdomain.ErrInvalidID),
		errors.Is(err, dealdomain.ErrInvalidAgent),
		errors.Is(err, dealdomain.ErrInvalidCarrier),
		errors.Is(err, dealdomain.ErrInvalidProduct),
		errors.Is(err, dealdomain.ErrInvalidClient),
		errors.Is(err, dealdomain.ErrInvalidPremium),
		errors.Is(err, dealdomain.ErrInvalidStatus),
		errors.Is(err, payoutdomain.ErrInvalidID),
		errors.Is(err, debtdomain.ErrInvalidID),
		errors.Is(err, analyticsdomain.ErrInvalidScope),
		errors.Is(err, analyticsdomain.ErrInvalidID),
		errors.Is(err, analyticsdomain.ErrInvalidCarrier):
		return true
	default:
		return false
	}
}

// isUnauthorizedError covers requests with no resolved agent identity.
func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, agentdomain.ErrInvalidAgency),
		errors.Is(err, positiondomain.ErrInvalidAgency),
		errors.Is(err, dealdomain.ErrInvalidAgency),
		errors.Is(err, payoutdomain.ErrInvalidAgency),
		errors.Is(err, debtdomain.ErrInvalidAgency),
		errors.Is(err, analyticsdomain.ErrInvalidAgency),
		errors.Is(err, hierarchydomain.ErrInvalidAgency):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, agentdomain.ErrForbidden),
		errors.Is(err, dealdomain.ErrForbidden),
		errors.Is(err, payoutdomain.ErrForbidden),
		errors.Is(err, debtdomain.ErrForbidden),
		errors.Is(err, analyticsdomain.ErrForbidden):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, agencydomain.ErrSlugExists),
		errors.Is(err, agentdomain.ErrEmailExists),
		errors.Is(err, productdomain.ErrCodeExists),
		errors.Is(err, carrierdomain.ErrCodeExists),
		errors.Is(err, dealdomain.ErrClientPhoneExists):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, agencydomain.ErrNotFound),
		errors.Is(err, agentdomain.ErrNotFound),
		errors.Is(err, positiondomain.ErrNotFound),
		errors.Is(err, carrierdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, dealdomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, hierarchydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// classifyErrorForLog buckets request errors for the logging middleware.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "none", payload.Type
	}
}
