package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iwa-store/user-service/internal/container"
	"github.com/iwa-store/user-service/internal/interface/middleware"
)

// DebugModule exposes runtime counters via expvar. Internal callers bypass
// the limiter; anything reaching this from outside gets a tight per-IP cap.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 60, time.Minute,
		middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
