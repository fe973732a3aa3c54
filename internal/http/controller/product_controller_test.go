package controller_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/http/controller"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/repository/memory"
	"github.com/iyhunko/storefront-backoffice/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRouter(store *memory.Store, principal auth.Principal) *gin.Engine {
	ctr := controller.NewProductController(service.NewProductService(store, nil))

	router := gin.New()
	router.GET("/api/products", ctr.ListProducts)
	router.GET("/api/products/:slug", ctr.GetProduct)

	admin := router.Group("/api", as(principal))
	admin.POST("/products", ctr.CreateProduct)
	admin.PUT("/products/:id", ctr.UpdateProduct)
	admin.DELETE("/products/:id", ctr.DeleteProduct)
	admin.POST("/products/:id/restore", ctr.RestoreProduct)
	admin.DELETE("/products/:id/purge", ctr.PurgeProduct)
	admin.POST("/products/batch/delete", ctr.DeleteProducts)
	admin.POST("/products/batch/restore", ctr.RestoreProducts)
	admin.GET("/admin/products", ctr.ListAdminProducts)
	return router
}

func productFields(categoryID uuid.UUID) map[string]string {
	return map[string]string{
		"name":           "Colar Pingente Coração Prata",
		"description":    "Colar em prata 925 com pingente de coração.",
		"price":          "199.90",
		"discountPrice":  "",
		"categoryId":     categoryID.String(),
		"stock":          "3",
		"featured":       "true",
		"images":         `["https://cdn.example.com/colar-1.jpg","https://cdn.example.com/colar-2.jpg"]`,
		"specifications": `[{"name":"Material","value":"Prata 925"},{"name":"Comprimento","value":"45cm"}]`,
	}
}

func createViaAPI(t *testing.T, router *gin.Engine, fields map[string]string) controller.ProductResponse {
	t.Helper()
	w := serve(router, formRequest(t, http.MethodPost, "/api/products", fields))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[controller.ProductResponse](t, w)
}

func TestProductController_CreateProduct(t *testing.T) {
	t.Run("creates product from multipart form", func(t *testing.T) {
		// given
		store := memory.NewStore()
		category := createCategory(t, store, "Colares", "colares")
		router := productRouter(store, adminPrincipal)

		// when
		created := createViaAPI(t, router, productFields(category.ID))

		// then
		assert.Equal(t, "colar-pingente-coracao-prata", created.Slug)
		assert.True(t, decimal.RequireFromString("199.90").Equal(created.Price))
		assert.Nil(t, created.DiscountPrice)
		assert.Equal(t, category.ID.String(), created.CategoryID)
		assert.Equal(t, 3, created.Stock)
		assert.True(t, created.Featured)
		assert.False(t, created.IsDeleted)
		assert.Equal(t, []string{"https://cdn.example.com/colar-1.jpg", "https://cdn.example.com/colar-2.jpg"}, created.Images)
		assert.ElementsMatch(t, []controller.SpecificationDTO{
			{Name: "Material", Value: "Prata 925"},
			{Name: "Comprimento", Value: "45cm"},
		}, created.Specifications)

		w := serve(router, jsonRequest(t, http.MethodGet, "/api/products/"+created.Slug, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decode[controller.ProductResponse](t, w).ID)
	})

	tests := []struct {
		name      string
		override  map[string]string
		wantField string
	}{
		{"invalid price", map[string]string{"price": "abc"}, "price"},
		{"invalid discount", map[string]string{"discountPrice": "x"}, "discountPrice"},
		{"invalid category id", map[string]string{"categoryId": "42"}, "categoryId"},
		{"invalid stock", map[string]string{"stock": "many"}, "stock"},
		{"malformed images", map[string]string{"images": "not-json"}, "images"},
		{"malformed specifications", map[string]string{"specifications": `{"name":"x"}`}, "specifications"},
		{"discount above price", map[string]string{"discountPrice": "250"}, "discountPrice"},
		{"negative stock", map[string]string{"stock": "-1"}, "stock"},
		{"empty name", map[string]string{"name": "  "}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			store := memory.NewStore()
			category := createCategory(t, store, "Colares", "colares")
			fields := productFields(category.ID)
			for key, value := range tt.override {
				fields[key] = value
			}

			// when
			w := serve(productRouter(store, adminPrincipal), formRequest(t, http.MethodPost, "/api/products", fields))

			// then
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantField, decode[response.ErrorResponse](t, w).Field)
			assert.Empty(t, allAudit(t, store))
		})
	}

	t.Run("non-admin is forbidden", func(t *testing.T) {
		store := memory.NewStore()
		category := createCategory(t, store, "Colares", "colares")

		w := serve(productRouter(store, userPrincipal), formRequest(t, http.MethodPost, "/api/products", productFields(category.ID)))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", decode[response.ErrorResponse](t, w).Error)
	})

	t.Run("persistence failure is reported generically", func(t *testing.T) {
		store := memory.NewStore()
		category := createCategory(t, store, "Colares", "colares")
		store.FailOn("audit_logs.create", assert.AnError)

		w := serve(productRouter(store, adminPrincipal), formRequest(t, http.MethodPost, "/api/products", productFields(category.ID)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal Server Error", decode[response.ErrorResponse](t, w).Error)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

func TestProductController_UpdateProduct(t *testing.T) {
	// given
	store := memory.NewStore()
	category := createCategory(t, store, "Colares", "colares")
	router := productRouter(store, adminPrincipal)
	created := createViaAPI(t, router, productFields(category.ID))

	// when
	w := serve(router, formRequest(t, http.MethodPut, "/api/products/"+created.ID, map[string]string{
		"stock":         "12",
		"discountPrice": "149.90",
		"images":        `["https://cdn.example.com/colar-3.jpg"]`,
	}))

	// then
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[controller.ProductResponse](t, w)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, 12, updated.Stock)
	require.NotNil(t, updated.DiscountPrice)
	assert.True(t, decimal.RequireFromString("149.90").Equal(*updated.DiscountPrice))
	assert.Equal(t, []string{"https://cdn.example.com/colar-3.jpg"}, updated.Images)
	assert.Len(t, updated.Specifications, 2)

	t.Run("unknown id", func(t *testing.T) {
		w := serve(router, formRequest(t, http.MethodPut, "/api/products/"+uuid.NewString(), map[string]string{"stock": "1"}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := serve(router, formRequest(t, http.MethodPut, "/api/products/42", map[string]string{"stock": "1"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "id", decode[response.ErrorResponse](t, w).Field)
	})
}

func TestProductController_DeleteAndRestore(t *testing.T) {
	// given
	store := memory.NewStore()
	category := createCategory(t, store, "Colares", "colares")
	router := productRouter(store, adminPrincipal)
	created := createViaAPI(t, router, productFields(category.ID))

	// when
	w := serve(router, jsonRequest(t, http.MethodDelete, "/api/products/"+created.ID, nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(router, jsonRequest(t, http.MethodGet, "/api/products/"+created.Slug, nil)).Code)

	w = serve(router, jsonRequest(t, http.MethodGet, "/api/admin/products?onlyDeleted=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[[]controller.ProductResponse](t, w)
	require.Len(t, deleted, 1)
	assert.True(t, deleted[0].IsDeleted)
	assert.NotNil(t, deleted[0].DeletedAt)

	w = serve(router, jsonRequest(t, http.MethodPost, "/api/products/"+created.ID+"/restore", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, serve(router, jsonRequest(t, http.MethodGet, "/api/products/"+created.Slug, nil)).Code)

	id := uuid.MustParse(created.ID)
	actions := []model.AuditAction{}
	for _, entry := range auditFor(t, store, id) {
		actions = append(actions, entry.Action)
	}
	assert.ElementsMatch(t, []model.AuditAction{model.AuditActionCreate, model.AuditActionDelete, model.AuditActionRestore}, actions)
}

func TestProductController_Batch(t *testing.T) {
	// given
	store := memory.NewStore()
	category := createCategory(t, store, "Colares", "colares")
	router := productRouter(store, adminPrincipal)

	var ids []string
	for _, name := range []string{"Colar Lua", "Colar Sol", "Colar Estrela"} {
		fields := productFields(category.ID)
		fields["name"] = name
		ids = append(ids, createViaAPI(t, router, fields).ID)
	}

	// when
	w := serve(router, jsonRequest(t, http.MethodPost, "/api/products/batch/delete", map[string]any{"ids": ids}))

	// then
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"count":3}`, w.Body.String())

	w = serve(router, jsonRequest(t, http.MethodGet, "/api/products", nil))
	assert.Empty(t, decode[[]controller.ProductResponse](t, w))

	w = serve(router, jsonRequest(t, http.MethodPost, "/api/products/batch/restore", map[string]any{"ids": ids[:1]}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":1}`, w.Body.String())

	w = serve(router, jsonRequest(t, http.MethodGet, "/api/admin/products?onlyDeleted=true", nil))
	assert.Len(t, decode[[]controller.ProductResponse](t, w), 2)

	t.Run("empty id list", func(t *testing.T) {
		w := serve(router, jsonRequest(t, http.MethodPost, "/api/products/batch/delete", map[string]any{"ids": []string{}}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := serve(router, jsonRequest(t, http.MethodPost, "/api/products/batch/delete", map[string]any{"ids": []string{"nope"}}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductController_PurgeProduct(t *testing.T) {
	// given
	store := memory.NewStore()
	category := createCategory(t, store, "Colares", "colares")
	router := productRouter(store, adminPrincipal)
	created := createViaAPI(t, router, productFields(category.ID))

	// when
	w := serve(router, jsonRequest(t, http.MethodDelete, "/api/products/"+created.ID+"/purge", nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	_, err := store.Products().FindByID(context.Background(), uuid.MustParse(created.ID))
	assert.Error(t, err)

	w = serve(router, jsonRequest(t, http.MethodDelete, "/api/products/"+created.ID+"/purge", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_ListProducts(t *testing.T) {
	// given
	store := memory.NewStore()
	colares := createCategory(t, store, "Colares", "colares")
	aneis := createCategory(t, store, "Anéis", "aneis")
	router := productRouter(store, adminPrincipal)

	cheap := productFields(colares.ID)
	cheap["name"], cheap["price"], cheap["featured"] = "Colar Simples", "50", "false"
	createViaAPI(t, router, cheap)

	discounted := productFields(colares.ID)
	discounted["name"], discounted["price"], discounted["discountPrice"] = "Colar Promo", "300", "40"
	createViaAPI(t, router, discounted)

	ring := productFields(aneis.ID)
	ring["name"], ring["price"] = "Anel Solitário", "900"
	createViaAPI(t, router, ring)

	tests := []struct {
		query string
		want  []string
	}{
		{"?category=colares&sort=price-asc", []string{"Colar Promo", "Colar Simples"}},
		{"?sort=price-desc", []string{"Anel Solitário", "Colar Simples", "Colar Promo"}},
		{"?sort=name-asc", []string{"Anel Solitário", "Colar Promo", "Colar Simples"}},
		{"?featured=true&sort=name-asc", []string{"Anel Solitário", "Colar Promo"}},
		{"?search=SOLIT", []string{"Anel Solitário"}},
		{"?sort=name-asc&page=2&limit=2", []string{"Colar Simples"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			// when
			w := serve(router, jsonRequest(t, http.MethodGet, "/api/products"+tt.query, nil))

			// then
			require.Equal(t, http.StatusOK, w.Code)
			var names []string
			for _, p := range decode[[]controller.ProductResponse](t, w) {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func allAudit(t *testing.T, store *memory.Store) []*model.AuditLog {
	t.Helper()
	entries, err := store.AuditLogs().List(context.Background(), repository.AuditQuery{Pagination: repository.NewPagination(1, 100)})
	require.NoError(t, err)
	return entries
}

func auditFor(t *testing.T, store *memory.Store, recordID uuid.UUID) []*model.AuditLog {
	t.Helper()
	entries, err := store.AuditLogs().List(context.Background(), repository.AuditQuery{
		RecordID:   &recordID,
		Pagination: repository.NewPagination(1, 100),
	})
	require.NoError(t, err)
	return entries
}
