package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

func (h *FarmHTTP) SendMessage(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "message.send")

	var req transport.SendMessageRequest
	if err := bind(c, l, "send_message_error", &req); err != nil {
		return err
	}

	msg, err := h.Svc.SendMessage(req)
	if err != nil {
		return fail(l, "send_message_error", err)
	}
	l.Info("send_message_success", "message_id", msg.ID, "receiver_id", msg.ReceiverID)
	return c.JSON(http.StatusCreated, msg)
}

func (h *FarmHTTP) GetThread(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "message.thread")

	thread, err := h.Svc.Thread(c.Param("partnerId"))
	if err != nil {
		return fail(l, "get_thread_error", err)
	}
	return c.JSON(http.StatusOK, thread)
}

func (h *FarmHTTP) GetConversations(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "message.conversations")

	convs, err := h.Svc.Conversations()
	if err != nil {
		return fail(l, "get_conversations_error", err)
	}
	return c.JSON(http.StatusOK, convs)
}
