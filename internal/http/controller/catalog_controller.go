package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/service"
)

// CategoryController serves product categories.
type CategoryController struct {
	categoryService *service.CategoryService
}

// NewCategoryController creates a new CategoryController.
func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

// CreateCategoryRequest is the body of POST /api/categories and PUT /api/categories/:id.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories returns every category ordered by name.
func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, err := cc.categoryService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryResponse(category))
	}
	c.JSON(http.StatusOK, out)
}

// CreateCategory adds a category.
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := cc.categoryService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory renames a category.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := cc.categoryService.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}
