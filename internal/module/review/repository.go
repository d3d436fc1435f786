package review

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/gamestore/internal/catalog"
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
	"github.com/simp-lee/gamestore/internal/repository"
)

var includes = []string{"User", "Game", "Purchase"}

// reviewRepository implements domain.ReviewRepository using GORM.
type reviewRepository struct {
	base *repository.Repository[domain.Review]
}

// NewReviewRepository creates a new ReviewRepository backed by the given GORM database.
func NewReviewRepository(db *gorm.DB, s *filter.Sanitizer) domain.ReviewRepository {
	return &reviewRepository{base: repository.MustNew[domain.Review](db, s, catalog.EntityReview)}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.base.Create(ctx, review)
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Review, error) {
	return r.base.GetByID(ctx, id, includeDeleted, includes...)
}

func (r *reviewRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Review], error) {
	return r.base.GetPaged(ctx, req, repository.WithIncludes(includes...))
}

func (r *reviewRepository) ListByGame(ctx context.Context, gameID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Review], error) {
	return r.base.GetPaged(ctx, req,
		repository.WithPreset(repository.Column("game_id", gameID)),
		repository.WithIncludes(includes...),
	)
}

// HasReviewed reports whether the user has a live review of the game.
func (r *reviewRepository) HasReviewed(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, repository.Column("user_id", userID), repository.Column("game_id", gameID))
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	return r.base.Update(ctx, review)
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Remove(ctx, id)
}

func (r *reviewRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return r.base.HardRemove(ctx, id)
}
