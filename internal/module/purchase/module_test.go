package purchase

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPurchaseModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(&PurchaseHandler{}).RegisterRoutes(r.Group("/api"))

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/purchases"},
		{http.MethodGet, "/api/purchases"},
		{http.MethodPost, "/api/purchases/query"},
		{http.MethodGet, "/api/purchases/period"},
		{http.MethodGet, "/api/purchases/by-user/:user_id"},
		{http.MethodGet, "/api/purchases/by-game/:game_id"},
		{http.MethodGet, "/api/purchases/owned/:user_id/:game_id"},
		{http.MethodGet, "/api/purchases/:id"},
		{http.MethodPut, "/api/purchases/:id"},
		{http.MethodDelete, "/api/purchases/:id"},
		{http.MethodDelete, "/api/purchases/:id/purge"},
	}

	routes := r.Routes()
	registered := make(map[string]bool, len(routes))
	for _, ri := range routes {
		registered[ri.Method+" "+ri.Path] = true
	}
	for _, e := range expected {
		if !registered[e.method+" "+e.path] {
			t.Errorf("route %s %s not registered", e.method, e.path)
		}
	}
	if len(routes) != len(expected) {
		t.Errorf("expected %d routes, got %d", len(expected), len(routes))
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil handler")
		}
	}()
	NewModule(nil)
}
