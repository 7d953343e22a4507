package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

func (h *FarmHTTP) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "session.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login_error", &req); err != nil {
		return err
	}

	user := h.Svc.Login(req)
	l.Info("login_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusOK, user)
}

func (h *FarmHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "session.logout")
	h.Svc.Logout()
	l.Info("logout_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *FarmHTTP) GetMe(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "session.get_me")
	user, err := h.Svc.Me()
	if err != nil {
		return fail(l, "get_me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *FarmHTTP) UpdateMe(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "session.update_me")

	var req transport.UpdateUserRequest
	if err := bind(c, l, "update_me_error", &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateMe(req)
	if err != nil {
		return fail(l, "update_me_error", err)
	}
	l.Info("update_me_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}
