package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a new UserModule with the given handler.
// Panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes registers the user API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	users.POST("", m.handler.Create)
	users.GET("", m.handler.List)
	users.POST("/query", m.handler.Query)
	users.GET("/:id", m.handler.Get)
	users.PUT("/:id", m.handler.Update)
	users.DELETE("/:id", m.handler.Delete)
	users.DELETE("/:id/purge", m.handler.Purge)
	users.GET("/:id/library", m.handler.Library)
}
