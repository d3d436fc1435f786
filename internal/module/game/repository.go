package game

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

// gameRepository implements domain.GameRepository using GORM.
type gameRepository struct {
	base *repository.Repository[domain.Game]
}

// NewGameRepository creates a new GameRepository backed by the given GORM database.
func NewGameRepository(db *gorm.DB, s *filter.Sanitizer) domain.GameRepository {
	return &gameRepository{base: repository.MustNew[domain.Game](db, s, catalog.EntityGame)}
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	return r.base.Create(ctx, game)
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Game, error) {
	return r.base.GetByID(ctx, id, includeDeleted)
}

func (r *gameRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Game], error) {
	return r.base.GetPaged(ctx, req)
}

// ListByAttribute pages through the games whose attribute equals value,
// ignoring case. The caller's filter narrows the preset further.
func (r *gameRepository) ListByAttribute(ctx context.Context, attr domain.GameAttribute, value string, req domain.PageRequest) (*domain.PageResult[domain.Game], error) {
	return r.base.GetPaged(ctx, req, repository.WithPreset(attributeEquals(attr, value)))
}

func attributeEquals(attr domain.GameAttribute, value string) repository.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Expr{
			SQL:  "LOWER(?) = LOWER(?)",
			Vars: []any{clause.Column{Table: clause.CurrentTable, Name: string(attr)}, value},
		})
	}
}

type salesRow struct {
	GameID    uuid.UUID
	UnitsSold int64
}

// TopSelling ranks live games by the quantity sold across live purchases.
func (r *gameRepository) TopSelling(ctx context.Context, limit int) ([]domain.GameSales, error) {
	var rows []salesRow
	err := r.base.DB(ctx).
		Model(&domain.Purchase{}).
		Select("purchases.game_id AS game_id, CAST(SUM(purchases.quantity) AS BIGINT) AS units_sold").
		Joins("JOIN games ON games.id = purchases.game_id AND games.is_deleted = ?", false).
		Where("purchases.is_deleted = ?", false).
		Group("purchases.game_id").
		Order("units_sold DESC, purchases.game_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, repository.MapError(err)
	}
	if len(rows) == 0 {
		return []domain.GameSales{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.GameID
	}
	var games []domain.Game
	if err := r.base.DB(ctx).Scopes(pkg.Visible(false)).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, repository.MapError(err)
	}
	byID := make(map[uuid.UUID]domain.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	sales := make([]domain.GameSales, 0, len(rows))
	for _, row := range rows {
		g, ok := byID[row.GameID]
		if !ok {
			continue
		}
		sales = append(sales, domain.GameSales{Game: g, UnitsSold: row.UnitsSold})
	}
	return sales, nil
}

func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	return r.base.Update(ctx, game)
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Remove(ctx, id)
}

func (r *gameRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return r.base.HardRemove(ctx, id)
}
