package review

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/pkg"
)

// ReviewHandler handles REST API requests for the review resource.
type ReviewHandler struct {
	svc   domain.ReviewService
	pages pkg.PageDefaults
}

// NewReviewHandler creates a new ReviewHandler with the given service and
// page size limits.
func NewReviewHandler(svc domain.ReviewService, pages pkg.PageDefaults) *ReviewHandler {
	return &ReviewHandler{svc: svc, pages: pages}
}

// Create handles POST /api/v1/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	review, err := h.svc.CreateReview(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, review)
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) Get(c *gin.Context) {
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

	review, err := h.svc.GetReview(c.Request.Context(), id, includeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, review)
}

// List handles GET /api/v1/reviews.
func (h *ReviewHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListReviews(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Query handles POST /api/v1/reviews/query with a JSON page request.
func (h *ReviewHandler) Query(c *gin.Context) {
	req, err := pkg.BindPageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListReviews(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// ListByGame handles GET /api/v1/reviews/by-game/:game_id.
func (h *ReviewHandler) ListByGame(c *gin.Context) {
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

	result, err := h.svc.ListGameReviews(c.Request.Context(), gameID, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /api/v1/reviews/:id.
func (h *ReviewHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateReviewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	review, err := h.svc.UpdateReview(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, review)
}

// Delete handles DELETE /api/v1/reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeleteReview(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Purge handles DELETE /api/v1/reviews/:id/purge.
func (h *ReviewHandler) Purge(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.PurgeReview(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
