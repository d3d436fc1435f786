package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/gamestore/internal/domain"
)

// PurchaseRequest represents the input for creating or updating a purchase.
type PurchaseRequest struct {
	UserID        uuid.UUID       `json:"user_id" binding:"required"`
	GameID        uuid.UUID       `json:"game_id" binding:"required"`
	PurchasedAt   *time.Time      `json:"purchased_at"`
	PricePaid     decimal.Decimal `json:"price_paid"`
	Quantity      int             `json:"quantity" binding:"required,min=1,max=10"`
	PaymentMethod *string         `json:"payment_method" binding:"omitempty,max=50"`
	DiscountCode  *string         `json:"discount_code" binding:"omitempty,max=50"`
}

func (r PurchaseRequest) input() domain.PurchaseInput {
	return domain.PurchaseInput{
		UserID:        r.UserID,
		GameID:        r.GameID,
		PurchasedAt:   r.PurchasedAt,
		PricePaid:     r.PricePaid,
		Quantity:      r.Quantity,
		PaymentMethod: r.PaymentMethod,
		DiscountCode:  r.DiscountCode,
	}
}
