package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

func (h *FarmHTTP) PlaceOrder(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.place_order")

	order, queued, err := h.Svc.PlaceOrder()
	if err != nil {
		return fail(l, "place_order_error", err)
	}
	if queued {
		l.Info("place_order_queued", "order_id", order.ID)
		return c.JSON(http.StatusAccepted, order)
	}
	l.Info("place_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *FarmHTTP) GetOrders(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.get_orders")

	orders, err := h.Svc.Orders()
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *FarmHTTP) UpdateOrderStatus(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.update_status")

	var req transport.UpdateOrderStatusRequest
	if err := bind(c, l, "update_order_status_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateOrderStatus(c.Param("id"), req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}
	l.Info("update_order_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *FarmHTTP) Reorder(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.reorder")

	cart, err := h.Svc.Reorder(c.Param("id"))
	if err != nil {
		return fail(l, "reorder_error", err)
	}
	l.Info("reorder_success", "order_id", c.Param("id"), "count", cart.Count)
	return c.JSON(http.StatusOK, cart)
}

func (h *FarmHTTP) SyncOfflineOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.sync_offline")

	n, err := h.Svc.SyncOfflineOrders(ctx)
	if err != nil {
		return fail(l, "sync_offline_orders_error", err)
	}
	l.Info("sync_offline_orders_success", "synced", n)
	return c.JSON(http.StatusOK, transport.SyncResponse{Synced: n})
}
