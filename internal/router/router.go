package router

import (
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/pegrio/portal-backend/api/handler"
)

type Handlers struct {
	Portal *apiHandler.PortalHandler
	Order  *apiHandler.OrderHandler
	Auth   *apiHandler.AuthHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()
	r.HandleMethodNotAllowed = true
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(http.StatusMethodNotAllowed)
		ctx.SetBodyString(`{"error":"Method not allowed"}`)
	}

	r.GET("/health", handlers.Health.Check)

	// Customer portal, keyed by portal token
	r.GET("/api/v1/portal/verify-token", handlers.Portal.VerifyToken)
	r.GET("/api/v1/portal/get-order", handlers.Portal.GetOrder)
	r.POST("/api/v1/portal/save-intake", handlers.Portal.SaveIntake)
	r.POST("/api/v1/portal/submit-review", handlers.Portal.SubmitReview)

	// Internal order creation (payment webhook)
	r.POST("/api/v1/orders", handlers.Order.CreateOrder)

	// Admin dashboard
	r.POST("/api/v1/admin/login", handlers.Auth.Login)
	r.POST("/api/v1/admin/logout", authMiddleware(handlers.Auth.Logout))
	r.GET("/api/v1/admin/orders", authMiddleware(handlers.Order.ListOrders))
	r.GET("/api/v1/admin/orders/{id}/events", authMiddleware(handlers.Order.ListOrderEvents))

	return r
}
