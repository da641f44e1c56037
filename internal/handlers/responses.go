package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/payhuk02/payhula-sub017/internal/services"
)

// Pagination is the list envelope metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListResponse wraps list payloads in the {data, pagination} envelope
type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// DataResponse wraps single payloads in the {data} envelope
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parsePagination reads page/limit query params with defaults 1/20
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func respondList(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, ListResponse{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, DataResponse{Data: data})
}

// respondError maps the typed service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	var validation *services.ValidationError
	var availability *services.InsufficientAvailabilityError
	var external *services.ExternalServiceError
	var partial *services.PartialFailureError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFound.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validation.Error()})
	case errors.As(err, &availability):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient_availability", Message: availability.Error()})
	case errors.As(err, &external):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "external_service_error", Message: external.Error()})
	case errors.As(err, &partial):
		c.JSON(http.StatusOK, ErrorResponse{Error: "partial_failure", Message: partial.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An unexpected error occurred"})
	}
}
