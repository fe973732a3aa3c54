package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/service"
	"github.com/shopspring/decimal"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProduct handles the multipart POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	in, ok := productForm(c)
	if !ok {
		return
	}

	product, err := pc.productService.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// UpdateProduct handles the multipart PUT request for updating a product.
// Fields missing from the form keep their stored values.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := productForm(c)
	if !ok {
		return
	}

	product, err := pc.productService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles the HTTP DELETE request for soft deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	pc.byID(c, pc.productService.SoftDelete)
}

// RestoreProduct clears the deletion marker of a product.
func (pc *ProductController) RestoreProduct(c *gin.Context) {
	pc.byID(c, pc.productService.Restore)
}

// PurgeProduct removes a product permanently.
func (pc *ProductController) PurgeProduct(c *gin.Context) {
	pc.byID(c, pc.productService.Purge)
}

// DeleteProducts soft deletes every product in the request body.
func (pc *ProductController) DeleteProducts(c *gin.Context) {
	pc.batch(c, pc.productService.SoftDeleteBatch)
}

// RestoreProducts restores every product in the request body.
func (pc *ProductController) RestoreProducts(c *gin.Context) {
	pc.batch(c, pc.productService.RestoreBatch)
}

// ListProducts handles the public catalog listing.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.List(c.Request.Context(), productQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// ListAdminProducts lists products including soft-deleted ones when asked to.
func (pc *ProductController) ListAdminProducts(c *gin.Context) {
	query := productQuery(c)
	query.IncludeDeleted, _ = strconv.ParseBool(c.Query("includeDeleted"))
	query.OnlyDeleted, _ = strconv.ParseBool(c.Query("onlyDeleted"))

	products, err := pc.productService.ListAdmin(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// GetProduct returns the active product with the given slug.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (pc *ProductController) byID(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := op(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (pc *ProductController) batch(c *gin.Context, op func(ctx context.Context, ids []uuid.UUID) (int, error)) {
	var req IDsRequest
	if !bindJSON(c, &req) {
		return
	}
	count, err := op(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Count: &count})
}

func productQuery(c *gin.Context) repository.ProductQuery {
	query := repository.ProductQuery{
		CategorySlug: c.Query("category"),
		Search:       strings.TrimSpace(c.Query("search")),
		Sort:         repository.ParseProductSort(c.Query("sort")),
		Pagination:   pagination(c),
	}
	if featured, err := strconv.ParseBool(c.Query("featured")); err == nil {
		query.Featured = &featured
	}
	return query
}

// productForm reads the product form fields. Absent fields stay nil so the
// same reader serves create and partial update. An empty discountPrice clears
// the discount.
func productForm(c *gin.Context) (service.ProductInput, bool) {
	var in service.ProductInput

	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			response.BadRequest(c, "price", "invalid price")
			return in, false
		}
		in.Price = &price
	}
	if v, ok := c.GetPostForm("discountPrice"); ok {
		discount := decimal.NullDecimal{}
		if v = strings.TrimSpace(v); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				response.BadRequest(c, "discountPrice", "invalid discount price")
				return in, false
			}
			discount = decimal.NewNullDecimal(d)
		}
		in.DiscountPrice = &discount
	}
	if v, ok := c.GetPostForm("categoryId"); ok {
		categoryID, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			response.BadRequest(c, "categoryId", "invalid category id")
			return in, false
		}
		in.CategoryID = &categoryID
	}
	if v, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			response.BadRequest(c, "stock", "invalid stock")
			return in, false
		}
		in.Stock = &stock
	}
	if v, ok := c.GetPostForm("featured"); ok {
		featured := v == "true" || v == "on" || v == "1"
		in.Featured = &featured
	}
	if v, ok := c.GetPostForm("images"); ok {
		images := []string{}
		if v != "" {
			if err := json.Unmarshal([]byte(v), &images); err != nil {
				response.BadRequest(c, "images", "images must be a JSON array of URLs")
				return in, false
			}
		}
		in.Images = images
	}
	if v, ok := c.GetPostForm("specifications"); ok {
		var specs []SpecificationDTO
		if v != "" {
			if err := json.Unmarshal([]byte(v), &specs); err != nil {
				response.BadRequest(c, "specifications", "specifications must be a JSON array of {name, value}")
				return in, false
			}
		}
		in.Specifications = make([]model.Specification, 0, len(specs))
		for _, spec := range specs {
			in.Specifications = append(in.Specifications, model.Specification{Name: spec.Name, Value: spec.Value})
		}
	}

	return in, true
}
