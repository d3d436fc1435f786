package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game is a catalog title.
type Game struct {
	BaseModel
	Title       string          `gorm:"size:200;not null;index" json:"title"`
	Description *string         `gorm:"size:2000" json:"description"`
	ListPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"list_price"`
	ReleaseDate *time.Time      `json:"release_date"`
	Genre       *string         `gorm:"size:50;index" json:"genre"`
	Platform    *string         `gorm:"size:50" json:"platform"`
	Developer   *string         `gorm:"size:100" json:"developer"`
	Purchases   []Purchase      `gorm:"foreignKey:GameID" json:"purchases,omitempty"`
	Reviews     []Review        `gorm:"foreignKey:GameID" json:"reviews,omitempty"`
}

// GameSales is a game together with the number of copies sold.
type GameSales struct {
	Game      Game  `json:"game"`
	UnitsSold int64 `json:"units_sold"`
}

// GameRepository defines the data access interface for games.
type GameRepository interface {
	Create(ctx context.Context, game *Game) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Game, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Game], error)
	ListByAttribute(ctx context.Context, attr GameAttribute, value string, req PageRequest) (*PageResult[Game], error)
	TopSelling(ctx context.Context, limit int) ([]GameSales, error)
	Update(ctx context.Context, game *Game) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// GameAttribute names a game column that can be used as a preset filter.
type GameAttribute string

const (
	GameByGenre     GameAttribute = "genre"
	GameByPlatform  GameAttribute = "platform"
	GameByDeveloper GameAttribute = "developer"
)

// GameService defines the business logic interface for games.
type GameService interface {
	CreateGame(ctx context.Context, in GameInput) (*Game, error)
	GetGame(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Game, error)
	ListGames(ctx context.Context, req PageRequest) (*PageResult[Game], error)
	ListGamesBy(ctx context.Context, attr GameAttribute, value string, req PageRequest) (*PageResult[Game], error)
	TopSelling(ctx context.Context, limit int) ([]GameSales, error)
	UpdateGame(ctx context.Context, id uuid.UUID, in GameInput) (*Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	PurgeGame(ctx context.Context, id uuid.UUID) error
}

// GameInput carries the writable fields of a game.
type GameInput struct {
	Title       string
	Description *string
	ListPrice   decimal.Decimal
	ReleaseDate *time.Time
	Genre       *string
	Platform    *string
	Developer   *string
}
