package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/gamestore/internal/domain"
)

const maxQuantity = 10

var maxPricePaid = decimal.RequireFromString("999.99")

// purchaseService implements domain.PurchaseService.
type purchaseService struct {
	repo  domain.PurchaseRepository
	users domain.UserRepository
	games domain.GameRepository
	now   func() time.Time
}

// NewPurchaseService creates a new PurchaseService. The user and game
// repositories are used to check that a purchase refers to live records.
func NewPurchaseService(repo domain.PurchaseRepository, users domain.UserRepository, games domain.GameRepository) domain.PurchaseService {
	return &purchaseService{repo: repo, users: users, games: games, now: time.Now}
}

// CreatePurchase validates input and records the purchase. The purchase time
// defaults to now.
func (s *purchaseService) CreatePurchase(ctx context.Context, in domain.PurchaseInput) (*domain.Purchase, error) {
	in = normalizeInput(in)
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{PurchasedAt: s.now().UTC()}
	applyInput(purchase, in)

	if err := s.repo.Create(ctx, purchase); err != nil {
		slog.ErrorContext(ctx, "create purchase failed",
			slog.String("user_id", in.UserID.String()),
			slog.String("game_id", in.GameID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	slog.InfoContext(ctx, "purchase created", slog.String("id", purchase.ID.String()))
	return purchase, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Purchase, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *purchaseService) ListPurchases(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return s.repo.List(ctx, req)
}

func (s *purchaseService) ListUserPurchases(ctx context.Context, userID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return s.repo.ListByUser(ctx, userID, req)
}

func (s *purchaseService) ListGamePurchases(ctx context.Context, gameID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return s.repo.ListByGame(ctx, gameID, req)
}

// ListPurchasesInPeriod pages through the purchases made in [From, To).
func (s *purchaseService) ListPurchasesInPeriod(ctx context.Context, period domain.Period, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	if period.From.IsZero() || period.To.IsZero() {
		return nil, domain.NewAppError(domain.CodeValidation, "period requires both from and to", nil)
	}
	if !period.From.Before(period.To) {
		return nil, domain.NewAppError(domain.CodeValidation, "period start must be before its end", nil)
	}
	return s.repo.ListByPeriod(ctx, period, req)
}

func (s *purchaseService) HasPurchased(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	return s.repo.HasPurchased(ctx, userID, gameID)
}

// UpdatePurchase loads the existing purchase, applies changes, and persists them.
func (s *purchaseService) UpdatePurchase(ctx context.Context, id uuid.UUID, in domain.PurchaseInput) (*domain.Purchase, error) {
	in = normalizeInput(in)
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	purchase, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	applyInput(purchase, in)
	// The relations may now point at other records.
	purchase.User, purchase.Game = nil, nil

	if err := s.repo.Update(ctx, purchase); err != nil {
		slog.ErrorContext(ctx, "update purchase failed", slog.String("id", id.String()), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "purchase updated", slog.String("id", id.String()))
	return purchase, nil
}

func (s *purchaseService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "purchase deleted", slog.String("id", id.String()))
	return nil
}

func (s *purchaseService) PurgePurchase(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		return err
	}
	slog.WarnContext(ctx, "purchase purged", slog.String("id", id.String()))
	return nil
}

func normalizeInput(in domain.PurchaseInput) domain.PurchaseInput {
	in.PaymentMethod = trimOptional(in.PaymentMethod)
	in.DiscountCode = trimOptional(in.DiscountCode)
	return in
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func applyInput(p *domain.Purchase, in domain.PurchaseInput) {
	p.UserID = in.UserID
	p.GameID = in.GameID
	p.PricePaid = in.PricePaid
	p.Quantity = in.Quantity
	p.PaymentMethod = in.PaymentMethod
	p.DiscountCode = in.DiscountCode
	if in.PurchasedAt != nil {
		p.PurchasedAt = in.PurchasedAt.UTC()
	}
}

// validateInput checks the fields of a normalized input, then that the user
// and the game exist.
func (s *purchaseService) validateInput(ctx context.Context, in domain.PurchaseInput) error {
	if in.UserID == uuid.Nil {
		return domain.NewAppError(domain.CodeValidation, "user_id is required", nil)
	}
	if in.GameID == uuid.Nil {
		return domain.NewAppError(domain.CodeValidation, "game_id is required", nil)
	}
	if in.PurchasedAt != nil && in.PurchasedAt.After(s.now()) {
		return domain.NewAppError(domain.CodeValidation, "purchase date must not be in the future", nil)
	}
	if !in.PricePaid.IsPositive() || in.PricePaid.GreaterThan(maxPricePaid) {
		return domain.NewAppError(domain.CodeValidation, "price paid must be greater than 0 and at most 999.99", nil)
	}
	if in.Quantity < 1 || in.Quantity > maxQuantity {
		return domain.NewAppError(domain.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxQuantity), nil)
	}
	if in.PaymentMethod != nil && utf8.RuneCountInString(*in.PaymentMethod) > 50 {
		return domain.NewAppError(domain.CodeValidation, "payment method must be at most 50 characters", nil)
	}
	if in.DiscountCode != nil && utf8.RuneCountInString(*in.DiscountCode) > 50 {
		return domain.NewAppError(domain.CodeValidation, "discount code must be at most 50 characters", nil)
	}

	if _, err := s.users.GetByID(ctx, in.UserID, false); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "user "+in.UserID.String()+" does not exist", nil)
		}
		return err
	}
	if _, err := s.games.GetByID(ctx, in.GameID, false); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "game "+in.GameID.String()+" does not exist", nil)
		}
		return err
	}
	return nil
}
