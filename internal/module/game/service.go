package game

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

const (
	defaultTopSelling = 10
	maxTopSelling     = 100
)

var maxListPrice = decimal.RequireFromString("999.99")

// gameService implements domain.GameService.
type gameService struct {
	repo domain.GameRepository
	now  func() time.Time
}

// NewGameService creates a new GameService with the given repository.
func NewGameService(repo domain.GameRepository) domain.GameService {
	return &gameService{repo: repo, now: time.Now}
}

// CreateGame validates input, builds a Game, and persists it via the repository.
func (s *gameService) CreateGame(ctx context.Context, in domain.GameInput) (*domain.Game, error) {
	in = normalizeInput(in)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	game := &domain.Game{}
	applyInput(game, in)

	if err := s.repo.Create(ctx, game); err != nil {
		slog.ErrorContext(ctx, "create game failed", slog.String("title", game.Title), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "game created", slog.String("id", game.ID.String()))
	return game, nil
}

func (s *gameService) GetGame(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Game, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *gameService) ListGames(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Game], error) {
	return s.repo.List(ctx, req)
}

// ListGamesBy pages through the games of one genre, platform or developer.
func (s *gameService) ListGamesBy(ctx context.Context, attr domain.GameAttribute, value string, req domain.PageRequest) (*domain.PageResult[domain.Game], error) {
	switch attr {
	case domain.GameByGenre, domain.GameByPlatform, domain.GameByDeveloper:
	default:
		return nil, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("unknown game attribute %q", attr), nil)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("%s is required", attr), nil)
	}
	return s.repo.ListByAttribute(ctx, attr, value, req)
}

// TopSelling returns the best selling games. A non-positive limit means the
// default of 10; larger limits are capped at 100.
func (s *gameService) TopSelling(ctx context.Context, limit int) ([]domain.GameSales, error) {
	if limit <= 0 {
		limit = defaultTopSelling
	}
	limit = min(limit, maxTopSelling)
	return s.repo.TopSelling(ctx, limit)
}

// UpdateGame loads the existing game, applies changes, and persists them.
func (s *gameService) UpdateGame(ctx context.Context, id uuid.UUID, in domain.GameInput) (*domain.Game, error) {
	in = normalizeInput(in)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	game, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	applyInput(game, in)

	if err := s.repo.Update(ctx, game); err != nil {
		slog.ErrorContext(ctx, "update game failed", slog.String("id", id.String()), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "game updated", slog.String("id", id.String()))
	return game, nil
}

func (s *gameService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "game deleted", slog.String("id", id.String()))
	return nil
}

func (s *gameService) PurgeGame(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		return err
	}
	slog.WarnContext(ctx, "game purged", slog.String("id", id.String()))
	return nil
}

func normalizeInput(in domain.GameInput) domain.GameInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimOptional(in.Description)
	in.Genre = trimOptional(in.Genre)
	in.Platform = trimOptional(in.Platform)
	in.Developer = trimOptional(in.Developer)
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

func applyInput(game *domain.Game, in domain.GameInput) {
	game.Title = in.Title
	game.Description = in.Description
	game.ListPrice = in.ListPrice
	game.Genre = in.Genre
	game.Platform = in.Platform
	game.Developer = in.Developer
	game.ReleaseDate = nil
	if in.ReleaseDate != nil {
		d := in.ReleaseDate.UTC()
		game.ReleaseDate = &d
	}
}

func (s *gameService) validateInput(in domain.GameInput) error {
	if in.Title == "" {
		return domain.NewAppError(domain.CodeValidation, "title is required", nil)
	}
	if utf8.RuneCountInString(in.Title) > 200 {
		return domain.NewAppError(domain.CodeValidation, "title must be at most 200 characters", nil)
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > 2000 {
		return domain.NewAppError(domain.CodeValidation, "description must be at most 2000 characters", nil)
	}
	if in.ListPrice.IsNegative() || in.ListPrice.GreaterThan(maxListPrice) {
		return domain.NewAppError(domain.CodeValidation, "list price must be between 0 and 999.99", nil)
	}
	if in.ReleaseDate != nil && in.ReleaseDate.After(s.now()) {
		return domain.NewAppError(domain.CodeValidation, "release date must not be in the future", nil)
	}
	for _, f := range []struct {
		name  string
		value *string
		max   int
	}{
		{"genre", in.Genre, 50},
		{"platform", in.Platform, 50},
		{"developer", in.Developer, 100},
	} {
		if f.value != nil && utf8.RuneCountInString(*f.value) > f.max {
			return domain.NewAppError(domain.CodeValidation, fmt.Sprintf("%s must be at most %d characters", f.name, f.max), nil)
		}
	}
	return nil
}
