package review

import "github.com/gin-gonic/gin"

// ReviewModule implements the app.Module interface for reviews.
type ReviewModule struct {
	handler *ReviewHandler
}

// NewModule creates a new ReviewModule with the given handler.
// Panics if h is nil.
func NewModule(h *ReviewHandler) *ReviewModule {
	if h == nil {
		panic("review.NewModule: handler must not be nil")
	}
	return &ReviewModule{handler: h}
}

// RegisterRoutes registers the review API routes.
func (m *ReviewModule) RegisterRoutes(api *gin.RouterGroup) {
	reviews := api.Group("/reviews")
	reviews.POST("", m.handler.Create)
	reviews.GET("", m.handler.List)
	reviews.POST("/query", m.handler.Query)
	reviews.GET("/by-game/:game_id", m.handler.ListByGame)
	reviews.GET("/:id", m.handler.Get)
	reviews.PUT("/:id", m.handler.Update)
	reviews.DELETE("/:id", m.handler.Delete)
	reviews.DELETE("/:id/purge", m.handler.Purge)
}
