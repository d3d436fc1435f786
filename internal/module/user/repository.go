package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/gamestore/internal/catalog"
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
	"github.com/simp-lee/gamestore/internal/pkg"
	"github.com/simp-lee/gamestore/internal/repository"
)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	base *repository.Repository[domain.User]
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB, s *filter.Sanitizer) domain.UserRepository {
	return &userRepository{base: repository.MustNew[domain.User](db, s, catalog.EntityUser)}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.base.Create(ctx, user)
}

// GetByID retrieves a user by its primary key.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.User, error) {
	return r.base.GetByID(ctx, id, includeDeleted)
}

// List returns a paginated, sorted, and filtered list of users.
func (r *userRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	return r.base.GetPaged(ctx, req)
}

// Update saves changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.base.Update(ctx, user)
}

// Delete logically deletes a user by ID.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Remove(ctx, id)
}

// Purge physically removes a user by ID.
func (r *userRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return r.base.HardRemove(ctx, id)
}

// ListPurchases returns the live purchases of a user with their games,
// most recent first.
func (r *userRepository) ListPurchases(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := r.base.DB(ctx).
		Scopes(pkg.Visible(false), repository.Column("user_id", userID)).
		Preload("Game").
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "purchased_at"}, Desc: true}).
		Find(&purchases).Error
	if err != nil {
		return nil, repository.MapError(err)
	}
	return purchases, nil
}
