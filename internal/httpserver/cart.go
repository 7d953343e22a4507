package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

func (h *FarmHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Cart())
}

func (h *FarmHTTP) GetCartTotal(c echo.Context) error {
	cart := h.Svc.Cart()
	return c.JSON(http.StatusOK, map[string]any{"count": cart.Count, "total": cart.Total})
}

func (h *FarmHTTP) AddToCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.add_to_cart")

	var req transport.AddToCartRequest
	if err := bind(c, l, "add_to_cart_error", &req); err != nil {
		return err
	}

	cart, err := h.Svc.AddToCart(req.ProductID)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	l.Info("add_to_cart_success", "product_id", req.ProductID, "count", cart.Count)
	return c.JSON(http.StatusOK, cart)
}

func (h *FarmHTTP) RemoveFromCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.remove_from_cart")

	id := c.Param("id")
	cart, err := h.Svc.RemoveFromCart(id)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	l.Info("remove_from_cart_success", "product_id", id, "count", cart.Count)
	return c.JSON(http.StatusOK, cart)
}
