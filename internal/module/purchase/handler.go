package purchase

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/pkg"
)

// PurchaseHandler handles REST API requests for the purchase resource.
type PurchaseHandler struct {
	svc   domain.PurchaseService
	pages pkg.PageDefaults
}

// NewPurchaseHandler creates a new PurchaseHandler with the given service and
// page size limits.
func NewPurchaseHandler(svc domain.PurchaseService, pages pkg.PageDefaults) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, pages: pages}
}

// Create handles POST /api/v1/purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req PurchaseRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	purchase, err := h.svc.CreatePurchase(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, purchase)
}

// Get handles GET /api/v1/purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
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

	purchase, err := h.svc.GetPurchase(c.Request.Context(), id, includeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, purchase)
}

// List handles GET /api/v1/purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.respond(c)(h.svc.ListPurchases(c.Request.Context(), req))
}

// Query handles POST /api/v1/purchases/query with a JSON page request.
func (h *PurchaseHandler) Query(c *gin.Context) {
	req, err := pkg.BindPageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.respond(c)(h.svc.ListPurchases(c.Request.Context(), req))
}

// ListByUser handles GET /api/v1/purchases/by-user/:user_id.
func (h *PurchaseHandler) ListByUser(c *gin.Context) {
	userID, err := pkg.ParseIDParam(c, "user_id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.respond(c)(h.svc.ListUserPurchases(c.Request.Context(), userID, req))
}

// ListByGame handles GET /api/v1/purchases/by-game/:game_id.
func (h *PurchaseHandler) ListByGame(c *gin.Context) {
	gameID, err := pkg.ParseIDParam(c, "game_id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.respond(c)(h.svc.ListGamePurchases(c.Request.Context(), gameID, req))
}

// ListByPeriod handles GET /api/v1/purchases/period?from=...&to=...
func (h *PurchaseHandler) ListByPeriod(c *gin.Context) {
	from, err := pkg.QueryTime(c, "from")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	to, err := pkg.QueryTime(c, "to")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.respond(c)(h.svc.ListPurchasesInPeriod(c.Request.Context(), domain.Period{From: from, To: to}, req))
}

func (h *PurchaseHandler) respond(c *gin.Context) func(*domain.PageResult[domain.Purchase], error) {
	return func(result *domain.PageResult[domain.Purchase], err error) {
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.List(c, result)
	}
}

// HasPurchasedResponse answers whether a user owns a game.
type HasPurchasedResponse struct {
	UserID       string `json:"user_id"`
	GameID       string `json:"game_id"`
	HasPurchased bool   `json:"has_purchased"`
}

// HasPurchased handles GET /api/v1/purchases/owned/:user_id/:game_id.
func (h *PurchaseHandler) HasPurchased(c *gin.Context) {
	userID, err := pkg.ParseIDParam(c, "user_id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	gameID, err := pkg.ParseIDParam(c, "game_id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	owned, err := h.svc.HasPurchased(c.Request.Context(), userID, gameID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, HasPurchasedResponse{UserID: userID.String(), GameID: gameID.String(), HasPurchased: owned})
}

// Update handles PUT /api/v1/purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req PurchaseRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	purchase, err := h.svc.UpdatePurchase(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, purchase)
}

// Delete handles DELETE /api/v1/purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeletePurchase(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Purge handles DELETE /api/v1/purchases/:id/purge.
func (h *PurchaseHandler) Purge(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.PurgePurchase(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
