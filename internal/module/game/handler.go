package game

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/pkg"
)

// GameHandler handles REST API requests for the game resource.
type GameHandler struct {
	svc   domain.GameService
	pages pkg.PageDefaults
}

// NewGameHandler creates a new GameHandler with the given service and page
// size limits.
func NewGameHandler(svc domain.GameService, pages pkg.PageDefaults) *GameHandler {
	return &GameHandler{svc: svc, pages: pages}
}

// Create handles POST /api/v1/games.
func (h *GameHandler) Create(c *gin.Context) {
	var req GameRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	game, err := h.svc.CreateGame(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, game)
}

// Get handles GET /api/v1/games/:id.
func (h *GameHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	includeDeleted, err := pkg.QueryBool(c, "include_deleted")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	game, err := h.svc.GetGame(c.Request.Context(), id, includeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, game)
}

// List handles GET /api/v1/games.
func (h *GameHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListGames(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Query handles POST /api/v1/games/query with a JSON page request.
func (h *GameHandler) Query(c *gin.Context) {
	req, err := pkg.BindPageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListGames(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// ListBy handles GET /api/v1/games/by/:attribute/:value, where attribute is
// genre, platform or developer.
func (h *GameHandler) ListBy(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	attr := domain.GameAttribute(c.Param("attribute"))
	result, err := h.svc.ListGamesBy(c.Request.Context(), attr, c.Param("value"), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// TopSelling handles GET /api/v1/games/top-selling?limit=N.
func (h *GameHandler) TopSelling(c *gin.Context) {
	limit, err := pkg.QueryInt(c, "limit", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	sales, err := h.svc.TopSelling(c.Request.Context(), limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, sales)
}

// Update handles PUT /api/v1/games/:id.
func (h *GameHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req GameRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	game, err := h.svc.UpdateGame(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, game)
}

// Delete handles DELETE /api/v1/games/:id.
func (h *GameHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeleteGame(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Purge handles DELETE /api/v1/games/:id/purge.
func (h *GameHandler) Purge(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.PurgeGame(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
