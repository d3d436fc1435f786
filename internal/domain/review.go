package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review is a user's score and comment on a game.
type Review struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"game_id"`
	PurchaseID *uuid.UUID `gorm:"type:uuid;index" json:"purchase_id"`
	Score      int        `gorm:"not null" json:"score"`
	Title      *string    `gorm:"size:200" json:"title"`
	Body       *string    `gorm:"size:4000" json:"body"`
	ReviewedAt time.Time  `gorm:"not null" json:"reviewed_at"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Game       *Game      `gorm:"foreignKey:GameID" json:"game,omitempty"`
	Purchase   *Purchase  `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
}

// ReviewRepository defines the data access interface for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Review, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Review], error)
	ListByGame(ctx context.Context, gameID uuid.UUID, req PageRequest) (*PageResult[Review], error)
	HasReviewed(ctx context.Context, userID, gameID uuid.UUID) (bool, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// ReviewService defines the business logic interface for reviews.
type ReviewService interface {
	CreateReview(ctx context.Context, in ReviewInput) (*Review, error)
	GetReview(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Review, error)
	ListReviews(ctx context.Context, req PageRequest) (*PageResult[Review], error)
	ListGameReviews(ctx context.Context, gameID uuid.UUID, req PageRequest) (*PageResult[Review], error)
	UpdateReview(ctx context.Context, id uuid.UUID, in ReviewInput) (*Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	PurgeReview(ctx context.Context, id uuid.UUID) error
}

// ReviewInput carries the writable fields of a review. The author and the
// game of an existing review cannot change, so updates ignore UserID and
// GameID.
type ReviewInput struct {
	UserID     uuid.UUID
	GameID     uuid.UUID
	PurchaseID *uuid.UUID
	Score      int
	Title      *string
	Body       *string
}
