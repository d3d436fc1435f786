package user

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/simp-lee/gamestore/internal/catalog"
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
)

// userService implements domain.UserService.
type userService struct {
	repo      domain.UserRepository
	sanitizer *filter.Sanitizer
	now       func() time.Time
}

// NewUserService creates a new UserService with the given repository. The
// sanitizer validates library filters.
func NewUserService(repo domain.UserRepository, s *filter.Sanitizer) domain.UserService {
	return &userService{repo: repo, sanitizer: s, now: time.Now}
}

// CreateUser validates input, builds a User, and persists it via the repository.
// The registration time defaults to now.
func (s *userService) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user := &domain.User{RegisteredAt: s.now().UTC()}
	applyInput(user, in)

	if err := s.repo.Create(ctx, user); err != nil {
		slog.ErrorContext(ctx, "create user failed", slog.String("username", user.Username), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "user created", slog.String("id", user.ID.String()))
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.User, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

// ListUsers returns a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	return s.repo.List(ctx, req)
}

// UpdateUser loads the existing user, applies changes, and persists them.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, in domain.UserInput) (*domain.User, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	applyInput(user, in)

	if err := s.repo.Update(ctx, user); err != nil {
		slog.ErrorContext(ctx, "update user failed", slog.String("id", id.String()), slog.Any("error", err))
		return nil, err
	}
	slog.InfoContext(ctx, "user updated", slog.String("id", id.String()))
	return user, nil
}

// DeleteUser logically deletes a user by ID.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", slog.String("id", id.String()))
	return nil
}

// PurgeUser physically removes a user by ID.
func (s *userService) PurgeUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		return err
	}
	slog.WarnContext(ctx, "user purged", slog.String("id", id.String()))
	return nil
}

// Library returns the games a user has purchased, filtered in memory.
// The filter is compiled before anything is loaded.
func (s *userService) Library(ctx context.Context, id uuid.UUID, q domain.LibraryQuery) ([]domain.PurchasedGame, error) {
	match, err := s.libraryPredicate(q)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id, false); err != nil {
		return nil, err
	}
	purchases, err := s.repo.ListPurchases(ctx, id)
	if err != nil {
		return nil, err
	}

	library := make([]domain.PurchasedGame, 0, len(purchases))
	for _, p := range purchases {
		if p.Game == nil {
			continue
		}
		item := domain.PurchasedGame{
			PurchaseID:  p.ID,
			GameID:      p.GameID,
			Title:       p.Game.Title,
			Genre:       p.Game.Genre,
			Platform:    p.Game.Platform,
			PurchasedAt: p.PurchasedAt,
			PricePaid:   p.PricePaid,
			Quantity:    p.Quantity,
		}
		if match(item) {
			library = append(library, item)
		}
	}
	return library, nil
}

func (s *userService) libraryPredicate(q domain.LibraryQuery) (filter.Predicate[domain.PurchasedGame], error) {
	var groups []domain.FilterGroup
	if strings.TrimSpace(q.Filter) != "" {
		g, err := s.sanitizer.ParseFilter(q.Filter, catalog.EntityPurchasedGame)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	if q.FilterTree != nil {
		groups = append(groups, *q.FilterTree)
	}
	return filter.CompilePredicate(catalog.PurchasedGames, catalog.PurchasedGameAccessors,
		&domain.FilterGroup{Logic: domain.LogicAnd, Groups: groups})
}

func normalizeInput(in domain.UserInput) domain.UserInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = trimOptional(in.FullName)
	in.Country = trimOptional(in.Country)
	return in
}

// trimOptional trims s and turns a blank value into nil.
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

func applyInput(user *domain.User, in domain.UserInput) {
	user.Username = in.Username
	user.Email = in.Email
	user.FullName = in.FullName
	user.Country = in.Country
	if in.RegisteredAt != nil {
		user.RegisteredAt = in.RegisteredAt.UTC()
	}
}

// validateInput checks the username and email of a normalized input.
func validateInput(in domain.UserInput) error {
	if in.Username == "" {
		return domain.NewAppError(domain.CodeValidation, "username is required", nil)
	}
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 50 {
		return domain.NewAppError(domain.CodeValidation, "username must be between 3 and 50 characters", nil)
	}
	if in.Email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	if in.FullName != nil && utf8.RuneCountInString(*in.FullName) > 150 {
		return domain.NewAppError(domain.CodeValidation, "full name must be at most 150 characters", nil)
	}
	if in.Country != nil && utf8.RuneCountInString(*in.Country) > 60 {
		return domain.NewAppError(domain.CodeValidation, "country must be at most 60 characters", nil)
	}
	return nil
}
