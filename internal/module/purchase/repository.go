package purchase

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/gamestore/internal/catalog"
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
	"github.com/simp-lee/gamestore/internal/repository"
)

// Purchases are always returned with their user and game.
var includes = []string{"User", "Game"}

// purchaseRepository implements domain.PurchaseRepository using GORM.
type purchaseRepository struct {
	base *repository.Repository[domain.Purchase]
}

// NewPurchaseRepository creates a new PurchaseRepository backed by the given GORM database.
func NewPurchaseRepository(db *gorm.DB, s *filter.Sanitizer) domain.PurchaseRepository {
	return &purchaseRepository{base: repository.MustNew[domain.Purchase](db, s, catalog.EntityPurchase)}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	return r.base.Create(ctx, purchase)
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Purchase, error) {
	return r.base.GetByID(ctx, id, includeDeleted, includes...)
}

func (r *purchaseRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return r.base.GetPaged(ctx, req, repository.WithIncludes(includes...))
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return r.base.GetPaged(ctx, req,
		repository.WithPreset(repository.Column("user_id", userID)),
		repository.WithIncludes(includes...),
	)
}

func (r *purchaseRepository) ListByGame(ctx context.Context, gameID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return r.base.GetPaged(ctx, req,
		repository.WithPreset(repository.Column("game_id", gameID)),
		repository.WithIncludes(includes...),
	)
}

// ListByPeriod pages through the purchases made in [period.From, period.To).
func (r *purchaseRepository) ListByPeriod(ctx context.Context, period domain.Period, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return r.base.GetPaged(ctx, req,
		repository.WithPreset(within(period)),
		repository.WithIncludes(includes...),
	)
}

func within(p domain.Period) repository.Scope {
	col := clause.Column{Table: clause.CurrentTable, Name: "purchased_at"}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Gte{Column: col, Value: p.From.UTC()}).
			Where(clause.Lt{Column: col, Value: p.To.UTC()})
	}
}

// HasPurchased reports whether the user holds a live purchase of the game.
func (r *purchaseRepository) HasPurchased(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, repository.Column("user_id", userID), repository.Column("game_id", gameID))
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *domain.Purchase) error {
	return r.base.Update(ctx, purchase)
}

func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Remove(ctx, id)
}

func (r *purchaseRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return r.base.HardRemove(ctx, id)
}
