package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase records a user buying copies of a game.
type Purchase struct {
	BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"game_id"`
	PurchasedAt   time.Time       `gorm:"not null;index" json:"purchased_at"`
	PricePaid     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_paid"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	PaymentMethod *string         `gorm:"size:50" json:"payment_method"`
	DiscountCode  *string         `gorm:"size:50" json:"discount_code"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Game          *Game           `gorm:"foreignKey:GameID" json:"game,omitempty"`
}

// Period is a half-open time interval [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// PurchaseRepository defines the data access interface for purchases.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *Purchase) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Purchase, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Purchase], error)
	ListByUser(ctx context.Context, userID uuid.UUID, req PageRequest) (*PageResult[Purchase], error)
	ListByGame(ctx context.Context, gameID uuid.UUID, req PageRequest) (*PageResult[Purchase], error)
	ListByPeriod(ctx context.Context, period Period, req PageRequest) (*PageResult[Purchase], error)
	HasPurchased(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	Update(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// PurchaseService defines the business logic interface for purchases.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error)
	GetPurchase(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Purchase, error)
	ListPurchases(ctx context.Context, req PageRequest) (*PageResult[Purchase], error)
	ListUserPurchases(ctx context.Context, userID uuid.UUID, req PageRequest) (*PageResult[Purchase], error)
	ListGamePurchases(ctx context.Context, gameID uuid.UUID, req PageRequest) (*PageResult[Purchase], error)
	ListPurchasesInPeriod(ctx context.Context, period Period, req PageRequest) (*PageResult[Purchase], error)
	HasPurchased(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, in PurchaseInput) (*Purchase, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
	PurgePurchase(ctx context.Context, id uuid.UUID) error
}

// PurchaseInput carries the writable fields of a purchase.
type PurchaseInput struct {
	UserID        uuid.UUID
	GameID        uuid.UUID
	PurchasedAt   *time.Time
	PricePaid     decimal.Decimal
	Quantity      int
	PaymentMethod *string
	DiscountCode  *string
}
