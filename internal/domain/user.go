package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a registered customer of the store.
type User struct {
	BaseModel
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName     *string    `gorm:"size:150" json:"full_name"`
	Country      *string    `gorm:"size:60" json:"country"`
	RegisteredAt time.Time  `gorm:"not null" json:"registered_at"`
	Purchases    []Purchase `gorm:"foreignKey:UserID" json:"purchases,omitempty"`
	Reviews      []Review   `gorm:"foreignKey:UserID" json:"reviews,omitempty"`
}

// PurchasedGame is one row of a user's library: a purchase joined with its game.
type PurchasedGame struct {
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	GameID      uuid.UUID       `json:"game_id"`
	Title       string          `json:"title"`
	Genre       *string         `json:"genre"`
	Platform    *string         `json:"platform"`
	PurchasedAt time.Time       `json:"purchased_at"`
	PricePaid   decimal.Decimal `json:"price_paid"`
	Quantity    int             `json:"quantity"`
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*User, error)
	List(ctx context.Context, req PageRequest) (*PageResult[User], error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]Purchase, error)
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, in UserInput) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID, includeDeleted bool) (*User, error)
	ListUsers(ctx context.Context, req PageRequest) (*PageResult[User], error)
	UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	PurgeUser(ctx context.Context, id uuid.UUID) error
	Library(ctx context.Context, id uuid.UUID, q LibraryQuery) ([]PurchasedGame, error)
}

// UserInput carries the writable fields of a user.
type UserInput struct {
	Username     string
	Email        string
	FullName     *string
	Country      *string
	RegisteredAt *time.Time
}

// LibraryQuery filters a user's library. The textual and structured filters
// are ANDed; both are validated against the PurchasedGame whitelist.
type LibraryQuery struct {
	Filter     string       `json:"filter,omitempty" form:"filter"`
	FilterTree *FilterGroup `json:"filter_tree,omitempty"`
}
