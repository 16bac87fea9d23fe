package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/simhub/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Profile  *apiHandler.ProfileHandler
	Catalog  *apiHandler.CatalogHandler
	Order    *apiHandler.OrderHandler
	Discount *apiHandler.DiscountHandler
	Health   *apiHandler.HealthHandler
}

type Middleware = func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, auth Middleware, admin Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", auth(handlers.Auth.Logout))

	// Public storefront
	r.GET("/api/v1/products", handlers.Catalog.ListProducts)
	r.GET("/api/v1/products/{code}", handlers.Catalog.GetProduct)
	r.GET("/api/v1/products/{code}/variants", handlers.Catalog.ListVariants)
	r.GET("/api/v1/categories", handlers.Catalog.ListCategories)
	r.GET("/api/v1/discounts/{code}", handlers.Discount.Get)
	r.POST("/api/v1/orders", handlers.Order.Create)
	r.GET("/api/v1/orders/track", handlers.Order.Track)

	// Authenticated user routes
	r.GET("/api/v1/profile", auth(handlers.Profile.Get))
	r.PUT("/api/v1/profile/password", auth(handlers.Profile.ChangePassword))

	// Staff routes
	staff := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return auth(admin(h))
	}
	r.POST("/api/v1/products", staff(handlers.Catalog.CreateProduct))
	r.PUT("/api/v1/products/{code}", staff(handlers.Catalog.UpdateProduct))
	r.DELETE("/api/v1/products/{code}", staff(handlers.Catalog.DeleteProduct))
	r.POST("/api/v1/products/{code}/variants", staff(handlers.Catalog.CreateVariant))
	r.PUT("/api/v1/variants/{code}", staff(handlers.Catalog.UpdateVariant))
	r.DELETE("/api/v1/variants/{code}", staff(handlers.Catalog.DeleteVariant))
	r.POST("/api/v1/categories", staff(handlers.Catalog.CreateCategory))
	r.PUT("/api/v1/categories/{code}", staff(handlers.Catalog.UpdateCategory))
	r.DELETE("/api/v1/categories/{code}", staff(handlers.Catalog.DeleteCategory))
	r.GET("/api/v1/orders", staff(handlers.Order.List))
	r.GET("/api/v1/orders/{code}", staff(handlers.Order.Get))
	r.PUT("/api/v1/orders/{code}", staff(handlers.Order.Update))
	r.DELETE("/api/v1/orders/{code}", staff(handlers.Order.Delete))
	r.GET("/api/v1/discounts", staff(handlers.Discount.List))
	r.POST("/api/v1/discounts", staff(handlers.Discount.Create))
	r.DELETE("/api/v1/discounts/{code}", staff(handlers.Discount.Delete))

	return r
}
