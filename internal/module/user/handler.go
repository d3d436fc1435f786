package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/pkg"
)

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc   domain.UserService
	pages pkg.PageDefaults
}

// NewUserHandler creates a new UserHandler with the given service and page
// size limits.
func NewUserHandler(svc domain.UserService, pages pkg.PageDefaults) *UserHandler {
	return &UserHandler{svc: svc, pages: pages}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, user)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
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

	user, err := h.svc.GetUser(c.Request.Context(), id, includeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.list(c, req)
}

// Query handles POST /api/v1/users/query with a JSON page request.
func (h *UserHandler) Query(c *gin.Context) {
	req, err := pkg.BindPageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.list(c, req)
}

func (h *UserHandler) list(c *gin.Context, req domain.PageRequest) {
	result, err := h.svc.ListUsers(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Purge handles DELETE /api/v1/users/:id/purge.
func (h *UserHandler) Purge(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.PurgeUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Library handles GET /api/v1/users/:id/library?filter=...
func (h *UserHandler) Library(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	games, err := h.svc.Library(c.Request.Context(), id, domain.LibraryQuery{Filter: c.Query("filter")})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, games)
}
