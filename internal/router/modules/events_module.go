package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iwa-store/user-service/internal/container"
	handlers "github.com/iwa-store/user-service/internal/interface/http"
	"github.com/iwa-store/user-service/internal/interface/middleware"
)

// EventsModule exposes the HTTP entry point for bus envelopes. Internal
// callers only; private-network IPs bypass the limiter.
type EventsModule struct {
	Handler *handlers.EventsHandler
}

func NewEventsModule(h *handlers.EventsHandler) *EventsModule {
	return &EventsModule{Handler: h}
}

func (m *EventsModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.POST("/app-events", rl, m.Handler.Receive)
}
