package router

import "github.com/gin-gonic/gin"

// Module is a self-contained route bundle. Each feature area implements it
// and mounts its endpoints on the group the registry hands over.
type Module interface {
	Register(rg *gin.RouterGroup)
}
