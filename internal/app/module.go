package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering catalog module.
// Each module mounts its resources under the shared API group.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
