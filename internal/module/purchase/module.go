package purchase

import "github.com/gin-gonic/gin"

// PurchaseModule implements the app.Module interface for purchases.
type PurchaseModule struct {
	handler *PurchaseHandler
}

// NewModule creates a new PurchaseModule with the given handler.
// Panics if h is nil.
func NewModule(h *PurchaseHandler) *PurchaseModule {
	if h == nil {
		panic("purchase.NewModule: handler must not be nil")
	}
	return &PurchaseModule{handler: h}
}

// RegisterRoutes registers the purchase API routes.
func (m *PurchaseModule) RegisterRoutes(api *gin.RouterGroup) {
	purchases := api.Group("/purchases")
	purchases.POST("", m.handler.Create)
	purchases.GET("", m.handler.List)
	purchases.POST("/query", m.handler.Query)
	purchases.GET("/period", m.handler.ListByPeriod)
	purchases.GET("/by-user/:user_id", m.handler.ListByUser)
	purchases.GET("/by-game/:game_id", m.handler.ListByGame)
	purchases.GET("/owned/:user_id/:game_id", m.handler.HasPurchased)
	purchases.GET("/:id", m.handler.Get)
	purchases.PUT("/:id", m.handler.Update)
	purchases.DELETE("/:id", m.handler.Delete)
	purchases.DELETE("/:id/purge", m.handler.Purge)
}
