package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
)

func (h *FarmHTTP) VerifyFarmer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ministry.verify_farmer")

	farmer, err := h.Svc.VerifyFarmer(ctx, c.Param("nationalId"))
	if err != nil {
		return fail(l, "verify_farmer_error", err)
	}
	return c.JSON(http.StatusOK, farmer)
}

func (h *FarmHTTP) RegisterProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ministry.register_product")

	registered, err := h.Svc.RegisterWithMinistry(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "register_product_error", err)
	}
	l.Info("register_product_success", "product_id", registered.ID, "certificate", registered.OriginCertificate)
	return c.JSON(http.StatusOK, registered)
}
