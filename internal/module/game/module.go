package game

import "github.com/gin-gonic/gin"

// GameModule implements the app.Module interface for the game catalog.
type GameModule struct {
	handler *GameHandler
}

// NewModule creates a new GameModule with the given handler.
// Panics if h is nil.
func NewModule(h *GameHandler) *GameModule {
	if h == nil {
		panic("game.NewModule: handler must not be nil")
	}
	return &GameModule{handler: h}
}

// RegisterRoutes registers the game API routes.
func (m *GameModule) RegisterRoutes(api *gin.RouterGroup) {
	games := api.Group("/games")
	games.POST("", m.handler.Create)
	games.GET("", m.handler.List)
	games.POST("/query", m.handler.Query)
	games.GET("/top-selling", m.handler.TopSelling)
	games.GET("/by/:attribute/:value", m.handler.ListBy)
	games.GET("/:id", m.handler.Get)
	games.PUT("/:id", m.handler.Update)
	games.DELETE("/:id", m.handler.Delete)
	games.DELETE("/:id/purge", m.handler.Purge)
}
