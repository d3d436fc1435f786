package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/gamestore/internal/domain"
)

// GameRequest represents the input for creating or updating a game.
type GameRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description *string         `json:"description" binding:"omitempty,max=2000"`
	ListPrice   decimal.Decimal `json:"list_price"`
	ReleaseDate *time.Time      `json:"release_date"`
	Genre       *string         `json:"genre" binding:"omitempty,max=50"`
	Platform    *string         `json:"platform" binding:"omitempty,max=50"`
	Developer   *string         `json:"developer" binding:"omitempty,max=100"`
}

func (r GameRequest) input() domain.GameInput {
	return domain.GameInput{
		Title:       r.Title,
		Description: r.Description,
		ListPrice:   r.ListPrice,
		ReleaseDate: r.ReleaseDate,
		Genre:       r.Genre,
		Platform:    r.Platform,
		Developer:   r.Developer,
	}
}
