package review

import (
	"github.com/google/uuid"

	"github.com/simp-lee/gamestore/internal/domain"
)

// CreateReviewRequest represents the input for creating a review.
type CreateReviewRequest struct {
	UserID     uuid.UUID  `json:"user_id" binding:"required"`
	GameID     uuid.UUID  `json:"game_id" binding:"required"`
	PurchaseID *uuid.UUID `json:"purchase_id"`
	Score      int        `json:"score" binding:"required,min=1,max=5"`
	Title      *string    `json:"title" binding:"omitempty,max=200"`
	Body       *string    `json:"body" binding:"omitempty,max=2000"`
}

func (r CreateReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{
		UserID:     r.UserID,
		GameID:     r.GameID,
		PurchaseID: r.PurchaseID,
		Score:      r.Score,
		Title:      r.Title,
		Body:       r.Body,
	}
}

// UpdateReviewRequest represents the input for updating a review.
type UpdateReviewRequest struct {
	PurchaseID *uuid.UUID `json:"purchase_id"`
	Score      int        `json:"score" binding:"required,min=1,max=5"`
	Title      *string    `json:"title" binding:"omitempty,max=200"`
	Body       *string    `json:"body" binding:"omitempty,max=2000"`
}

func (r UpdateReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{
		PurchaseID: r.PurchaseID,
		Score:      r.Score,
		Title:      r.Title,
		Body:       r.Body,
	}
}
