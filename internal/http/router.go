package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/config"
	"github.com/iyhunko/storefront-backoffice/internal/http/controller"
	"github.com/iyhunko/storefront-backoffice/internal/http/middleware"
)

// Controllers groups the handlers mounted by InitRouter.
type Controllers struct {
	Health   *controller.Controller
	Product  *controller.ProductController
	Category *controller.CategoryController
	Order    *controller.OrderController
	Account  *controller.AccountController
	Admin    *controller.AdminController
	Storage  *controller.StorageController
}

func InitRouter(conf *config.Config, server *gin.Engine, mw *middleware.Middleware, ctr Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.CORS(conf.CORS.AllowedOrigins))
	server.Use(middleware.Logger())

	server.GET("/ping", ctr.Health.Ping)

	api := server.Group("/api")

	// Public catalog
	api.GET("/categories", ctr.Category.ListCategories)
	api.GET("/products", ctr.Product.ListProducts)
	api.GET("/products/:slug", ctr.Product.GetProduct)

	// Authenticated customers
	user := api.Group("", mw.Authenticate())
	{
		user.POST("/orders", ctr.Order.Checkout)
		user.GET("/orders", ctr.Order.ListMyOrders)
		user.GET("/orders/:id", ctr.Order.GetOrder)

		user.GET("/account/addresses", ctr.Account.ListAddresses)
		user.POST("/account/addresses", ctr.Account.CreateAddress)
		user.PUT("/account/addresses/:id", ctr.Account.UpdateAddress)
		user.DELETE("/account/addresses/:id", ctr.Account.DeleteAddress)

		user.GET("/account/wishlist", ctr.Account.ListWishlist)
		user.POST("/account/wishlist", ctr.Account.AddToWishlist)
		user.DELETE("/account/wishlist/:productId", ctr.Account.RemoveFromWishlist)
	}

	// Admin back-office
	admin := api.Group("", mw.RequireAdmin())
	{
		admin.POST("/products", ctr.Product.CreateProduct)
		admin.PUT("/products/:id", ctr.Product.UpdateProduct)
		admin.DELETE("/products/:id", ctr.Product.DeleteProduct)
		admin.POST("/products/:id/restore", ctr.Product.RestoreProduct)
		admin.DELETE("/products/:id/purge", ctr.Product.PurgeProduct)
		admin.POST("/products/batch/delete", ctr.Product.DeleteProducts)
		admin.POST("/products/batch/restore", ctr.Product.RestoreProducts)

		admin.POST("/categories", ctr.Category.CreateCategory)
		admin.PUT("/categories/:id", ctr.Category.UpdateCategory)
		admin.POST("/storage", ctr.Storage.Upload)
		admin.POST("/seed", ctr.Admin.Seed)
		admin.POST("/setup", ctr.Admin.Setup)

		admin.GET("/admin/products", ctr.Product.ListAdminProducts)
		admin.GET("/admin/audit-logs", ctr.Admin.ListAuditLogs)
		admin.GET("/admin/orders", ctr.Order.ListOrders)
		admin.PATCH("/admin/orders/:id/status", ctr.Order.UpdateOrderStatus)
		admin.GET("/admin/customers", ctr.Admin.ListCustomers)
	}

	return server
}
