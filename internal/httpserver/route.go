package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/farmconnect/internal/transport"
)

type Deps struct {
	Handler  *FarmHTTP
	Gatherer prometheus.Gatherer
	// Ready reports whether the persisted cart has been loaded.
	Ready func() bool
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = transport.NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil && !d.Ready() {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	h := d.Handler

	e.POST("/session/login", h.Login)
	e.POST("/session/logout", h.Logout)
	e.GET("/me", h.GetMe)
	e.PUT("/me", h.UpdateMe)

	products := e.Group("/products")
	products.GET("", h.GetProducts)
	products.POST("", h.CreateProduct)
	products.GET("/:id", h.GetProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
	products.GET("/:id/recipe", h.GetRecipe)

	e.GET("/farmer/products", h.GetFarmerProducts)

	cart := e.Group("/cart")
	cart.GET("", h.GetCart)
	cart.POST("", h.AddToCart)
	cart.GET("/total", h.GetCartTotal)
	cart.DELETE("/:id", h.RemoveFromCart)

	orders := e.Group("/orders")
	orders.POST("", h.PlaceOrder)
	orders.GET("", h.GetOrders)
	orders.POST("/sync", h.SyncOfflineOrders)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)
	orders.POST("/:id/reorder", h.Reorder)

	e.POST("/messages", h.SendMessage)
	e.GET("/messages/:partnerId", h.GetThread)
	e.GET("/conversations", h.GetConversations)

	e.GET("/ministry/farmers/:nationalId", h.VerifyFarmer)
	e.POST("/ministry/products/:id", h.RegisterProduct)

	e.GET("/ws", h.Subscribe)
}
