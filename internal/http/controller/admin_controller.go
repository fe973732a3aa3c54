package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/service"
)

// AdminController serves the back-office pages that are not tied to one resource.
type AdminController struct {
	auditService    *service.AuditService
	customerService *service.CustomerService
	setupService    *service.SetupService
}

// NewAdminController creates a new AdminController.
func NewAdminController(auditService *service.AuditService, customerService *service.CustomerService, setupService *service.SetupService) *AdminController {
	return &AdminController{
		auditService:    auditService,
		customerService: customerService,
		setupService:    setupService,
	}
}

// ListAuditLogs returns audit entries newest first. Query: table, action, recordId, page, limit.
func (ac *AdminController) ListAuditLogs(c *gin.Context) {
	query := repository.AuditQuery{
		TableName:  c.Query("table"),
		Action:     model.AuditAction(c.Query("action")),
		Pagination: pagination(c),
	}
	if raw := c.Query("recordId"); raw != "" {
		recordID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "recordId", "invalid id")
			return
		}
		query.RecordID = &recordID
	}

	entries, err := ac.auditService.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toAuditLogResponse(entry))
	}
	c.JSON(http.StatusOK, out)
}

// ListCustomers returns user profiles newest first.
func (ac *AdminController) ListCustomers(c *gin.Context) {
	profiles, err := ac.customerService.List(c.Request.Context(), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]CustomerResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, toCustomerResponse(profile))
	}
	c.JSON(http.StatusOK, out)
}

// Seed upserts the demo catalog.
func (ac *AdminController) Seed(c *gin.Context) {
	result, err := ac.setupService.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "seeded": result})
}

// Setup applies pending schema migrations.
func (ac *AdminController) Setup(c *gin.Context) {
	if err := ac.setupService.Setup(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
