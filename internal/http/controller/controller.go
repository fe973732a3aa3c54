package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// Controller handles general HTTP requests.
type Controller struct {
	db HealthChecker
}

// New creates a new Controller backed by the given database handle.
func New(db HealthChecker) *Controller {
	return &Controller{
		db: db,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	if err := con.db.PingContext(c.Request.Context()); err != nil {
		slog.Error("Health check failed", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// SuccessResponse is returned by operations that have no payload of their own.
type SuccessResponse struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
}

// IDsRequest is the body of batch operations.
type IDsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, name, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and limit query parameters. Missing or malformed
// values fall back to the defaults.
func pagination(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.NewPagination(page, limit)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "", "invalid request body: "+err.Error())
		return false
	}
	return true
}
