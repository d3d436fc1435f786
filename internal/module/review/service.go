package review

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/simp-lee/gamestore/internal/domain"
)

const (
	minScore = 1
	maxScore = 5
)

// reviewService implements domain.ReviewService.
type reviewService struct {
	repo      domain.ReviewRepository
	users     domain.UserRepository
	games     domain.GameRepository
	purchases domain.PurchaseRepository
	now       func() time.Time
}

// NewReviewService creates a new ReviewService. The user, game and purchase
// repositories resolve the records a review refers to.
func NewReviewService(repo domain.ReviewRepository, users domain.UserRepository, games domain.GameRepository, purchases domain.PurchaseRepository) domain.ReviewService {
	return &reviewService{repo: repo, users: users, games: games, purchases: purchases, now: time.Now}
}

// CreateReview records a user's review of a game. A user reviews a game at
// most once. A review linked to one of the user's purchases of the game is
// marked verified.
func (s *reviewService) CreateReview(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.UserID == uuid.Nil {
		return nil, domain.NewAppError(domain.CodeValidation, "user_id is required", nil)
	}
	if in.GameID == uuid.Nil {
		return nil, domain.NewAppError(domain.CodeValidation, "game_id is required", nil)
	}
	if err := s.requireLive(ctx, in.UserID, in.GameID); err != nil {
		return nil, err
	}

	reviewed, err := s.repo.HasReviewed(ctx, in.UserID, in.GameID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "user has already reviewed this game", nil)
	}

	review := &domain.Review{UserID: in.UserID, GameID: in.GameID, ReviewedAt: s.now().UTC()}
	applyInput(review, in)
	if err := s.verify(ctx, review); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, review); err != nil {
		slog.ErrorContext(ctx, "create review failed",
			slog.String("user_id", in.UserID.String()),
			slog.String("game_id", in.GameID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	slog.InfoContext(ctx, "review created", slog.String("id", review.ID.String()), slog.Bool("verified", review.IsVerified))
	return review, nil
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Review, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *reviewService) ListReviews(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Review], error) {
	return s.repo.List(ctx, req)
}

func (s *reviewService) ListGameReviews(ctx context.Context, gameID uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Review], error) {
	return s.repo.ListByGame(ctx, gameID, req)
}

// UpdateReview changes the score, text and purchase link of a live review
// and re-evaluates its verification.
func (s *reviewService) UpdateReview(ctx context.Context, id uuid.UUID, in domain.ReviewInput) (*domain.Review, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	applyInput(review, in)
	if err := s.verify(ctx, review); err != nil {
		return nil, err
	}
	review.User, review.Game, review.Purchase = nil, nil, nil

	if err := s.repo.Update(ctx, review); err != nil {
		slog.ErrorContext(ctx, "update review failed", slog.String("id", id.String()), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "review updated", slog.String("id", id.String()))
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "review deleted", slog.String("id", id.String()))
	return nil
}

func (s *reviewService) PurgeReview(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		return err
	}
	slog.WarnContext(ctx, "review purged", slog.String("id", id.String()))
	return nil
}

func (s *reviewService) requireLive(ctx context.Context, userID, gameID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID, false); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "user "+userID.String()+" does not exist", nil)
		}
		return err
	}
	if _, err := s.games.GetByID(ctx, gameID, false); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "game "+gameID.String()+" does not exist", nil)
		}
		return err
	}
	return nil
}

// verify sets IsVerified from the review's purchase link. A linked purchase
// must be live and belong to the same user and game.
func (s *reviewService) verify(ctx context.Context, review *domain.Review) error {
	review.IsVerified = false
	if review.PurchaseID == nil {
		return nil
	}
	purchase, err := s.purchases.GetByID(ctx, *review.PurchaseID, false)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "purchase "+review.PurchaseID.String()+" does not exist", nil)
		}
		return err
	}
	if purchase.UserID != review.UserID || purchase.GameID != review.GameID {
		return domain.NewAppError(domain.CodeValidation, "purchase does not belong to this user and game", nil)
	}
	review.IsVerified = true
	return nil
}

func normalizeInput(in domain.ReviewInput) domain.ReviewInput {
	in.Title = trimOptional(in.Title)
	in.Body = trimOptional(in.Body)
	if in.PurchaseID != nil && *in.PurchaseID == uuid.Nil {
		in.PurchaseID = nil
	}
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

func applyInput(r *domain.Review, in domain.ReviewInput) {
	r.Score = in.Score
	r.Title = in.Title
	r.Body = in.Body
	r.PurchaseID = in.PurchaseID
}

func validateInput(in domain.ReviewInput) error {
	if in.Score < minScore || in.Score > maxScore {
		return domain.NewAppError(domain.CodeValidation, "score must be between 1 and 5", nil)
	}
	if in.Title != nil && utf8.RuneCountInString(*in.Title) > 200 {
		return domain.NewAppError(domain.CodeValidation, "title must be at most 200 characters", nil)
	}
	if in.Body != nil && utf8.RuneCountInString(*in.Body) > 2000 {
		return domain.NewAppError(domain.CodeValidation, "body must be at most 2000 characters", nil)
	}
	return nil
}
