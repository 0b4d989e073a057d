package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iwa-store/user-service/internal/container"
	handlers "github.com/iwa-store/user-service/internal/interface/http"
	"github.com/iwa-store/user-service/internal/interface/middleware"
	"github.com/iwa-store/user-service/pkg/helpers"
)

// Module wires the user HTTP handlers and bearer-token middleware into routes.
// Public: POST /user/register, POST /user/login, GET /user/health, GET /user/whoami
// Protected: POST /user/address, GET /user/profile, GET /user/wishlist

type Module struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func New(h *handlers.UserHandler, jwt *helpers.JWTManager) *Module {
	return &Module{Handler: h, JWT: jwt}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	// Public with rate limiting
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/user/register", registerLimiter, m.Handler.Register)
	rg.POST("/user/login", loginLimiter, m.Handler.Login)
	rg.GET("/user/health", m.Handler.Health)
	rg.GET("/user/whoami", m.Handler.WhoAmI)

	// Protected
	auth := rg.Group("/user")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/address", m.Handler.AddAddress)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.GET("/wishlist", m.Handler.GetWishlist)
	}
}
