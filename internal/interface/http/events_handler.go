package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/iwa-store/user-service/internal/interface/events"
	"github.com/iwa-store/user-service/pkg/response"
)

// EventsHandler is the HTTP entry point for envelopes delivered outside the
// bus. It feeds the same dispatcher the AMQP consumer uses, so both paths
// share one set of routing semantics.
type EventsHandler struct {
	Dispatcher *events.Dispatcher
	Logger     *logrus.Logger
}

func NewEventsHandler(d *events.Dispatcher, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{Dispatcher: d, Logger: logger}
}

type appEventRequest struct {
	// Payload is the raw {event, data} envelope as published on the bus.
	Payload map[string]any `json:"payload" binding:"required"`
}

func (h *EventsHandler) Receive(c *gin.Context) {
	var req appEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		c.JSON(resp.Status, resp)
		return
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Dispatcher.Dispatch(c.Request.Context(), body); err != nil {
		switch {
		case errors.Is(err, events.ErrMalformedEnvelope):
			resp := response.Error[any](c, http.StatusBadRequest, "malformed event envelope", err.Error())
			c.JSON(resp.Status, resp)
		case errors.Is(err, events.ErrUnknownEvent):
			// logged and dropped by the dispatcher; acknowledge receipt
			c.JSON(http.StatusOK, response.Success[any](c, http.StatusOK, req.Payload, "event ignored", nil))
		default:
			h.Logger.WithError(err).Error("app-event handling failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "event handling failed", nil)
			c.JSON(resp.Status, resp)
		}
		return
	}
	c.JSON(http.StatusOK, response.Success[any](c, http.StatusOK, req.Payload, "event processed", nil))
}
