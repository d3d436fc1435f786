package user

import (
	"time"

	"github.com/simp-lee/gamestore/internal/domain"
)

// UserRequest represents the input for creating or updating a user.
type UserRequest struct {
	Username     string     `json:"username" binding:"required,min=3,max=50"`
	Email        string     `json:"email" binding:"required,email,max=255"`
	FullName     *string    `json:"full_name" binding:"omitempty,max=150"`
	Country      *string    `json:"country" binding:"omitempty,max=60"`
	RegisteredAt *time.Time `json:"registered_at"`
}

func (r UserRequest) input() domain.UserInput {
	return domain.UserInput{
		Username:     r.Username,
		Email:        r.Email,
		FullName:     r.FullName,
		Country:      r.Country,
		RegisteredAt: r.RegisteredAt,
	}
}
