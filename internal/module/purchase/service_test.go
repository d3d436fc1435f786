package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/gamestore/internal/domain"
)

// --- mocks ---

type mockPurchaseRepo struct {
	purchases map[uuid.UUID]*domain.Purchase
	owned     map[[2]uuid.UUID]bool

	lastPeriod  domain.Period
	periodCalls int
}

func newMockRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{
		purchases: make(map[uuid.UUID]*domain.Purchase),
		owned:     make(map[[2]uuid.UUID]bool),
	}
}

func (m *mockPurchaseRepo) Create(_ context.Context, p *domain.Purchase) error {
	p.ID = uuid.New()
	m.purchases[p.ID] = p
	m.owned[[2]uuid.UUID{p.UserID, p.GameID}] = true
	return nil
}

func (m *mockPurchaseRepo) GetByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*domain.Purchase, error) {
	p, ok := m.purchases[id]
	if !ok || (p.IsDeleted && !includeDeleted) {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPurchaseRepo) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return domain.NewPageResult([]domain.Purchase{}, 0, req), nil
}

func (m *mockPurchaseRepo) ListByUser(_ context.Context, _ uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return domain.NewPageResult([]domain.Purchase{}, 0, req), nil
}

func (m *mockPurchaseRepo) ListByGame(_ context.Context, _ uuid.UUID, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	return domain.NewPageResult([]domain.Purchase{}, 0, req), nil
}

func (m *mockPurchaseRepo) ListByPeriod(_ context.Context, period domain.Period, req domain.PageRequest) (*domain.PageResult[domain.Purchase], error) {
	m.periodCalls++
	m.lastPeriod = period
	return domain.NewPageResult([]domain.Purchase{}, 0, req), nil
}

func (m *mockPurchaseRepo) HasPurchased(_ context.Context, userID, gameID uuid.UUID) (bool, error) {
	return m.owned[[2]uuid.UUID{userID, gameID}], nil
}

func (m *mockPurchaseRepo) Update(_ context.Context, p *domain.Purchase) error {
	m.purchases[p.ID] = p
	return nil
}

func (m *mockPurchaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	p, ok := m.purchases[id]
	if !ok || p.IsDeleted {
		return domain.ErrNotFound
	}
	p.IsDeleted = true
	return nil
}

func (m *mockPurchaseRepo) Purge(_ context.Context, id uuid.UUID) error {
	if _, ok := m.purchases[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.purchases, id)
	return nil
}

// stubUsers and stubGames only answer GetByID.
type stubUsers struct {
	domain.UserRepository
	known map[uuid.UUID]bool
	err   error
}

func (s stubUsers) GetByID(_ context.Context, id uuid.UUID, _ bool) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.known[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.User{BaseModel: domain.BaseModel{ID: id}}, nil
}

type stubGames struct {
	domain.GameRepository
	known map[uuid.UUID]bool
}

func (s stubGames) GetByID(_ context.Context, id uuid.UUID, _ bool) (*domain.Game, error) {
	if !s.known[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.Game{BaseModel: domain.BaseModel{ID: id}}, nil
}

var (
	fixedNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	userID   = uuid.New()
	gameID   = uuid.New()
)

func newTestService(repo domain.PurchaseRepository) *purchaseService {
	return &purchaseService{
		repo:  repo,
		users: stubUsers{known: map[uuid.UUID]bool{userID: true}},
		games: stubGames{known: map[uuid.UUID]bool{gameID: true}},
		now:   func() time.Time { return fixedNow },
	}
}

func validInput() domain.PurchaseInput {
	return domain.PurchaseInput{UserID: userID, GameID: gameID, PricePaid: decimal.RequireFromString("24.99"), Quantity: 1}
}

func strPtr(s string) *string { return &s }

func TestCreatePurchase(t *testing.T) {
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(*domain.PurchaseInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(*domain.PurchaseInput) {}},
		{name: "max quantity", mutate: func(in *domain.PurchaseInput) { in.Quantity = 10 }},
		{name: "missing user", mutate: func(in *domain.PurchaseInput) { in.UserID = uuid.Nil }, wantErr: true},
		{name: "unknown user", mutate: func(in *domain.PurchaseInput) { in.UserID = uuid.New() }, wantErr: true},
		{name: "unknown game", mutate: func(in *domain.PurchaseInput) { in.GameID = uuid.New() }, wantErr: true},
		{name: "zero price", mutate: func(in *domain.PurchaseInput) { in.PricePaid = decimal.Zero }, wantErr: true},
		{name: "price above cap", mutate: func(in *domain.PurchaseInput) { in.PricePaid = decimal.RequireFromString("1000") }, wantErr: true},
		{name: "zero quantity", mutate: func(in *domain.PurchaseInput) { in.Quantity = 0 }, wantErr: true},
		{name: "quantity above cap", mutate: func(in *domain.PurchaseInput) { in.Quantity = 11 }, wantErr: true},
		{name: "future date", mutate: func(in *domain.PurchaseInput) { in.PurchasedAt = &future }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			svc := newTestService(repo)
			in := validInput()
			tt.mutate(&in)

			p, err := svc.CreatePurchase(context.Background(), in)
			if tt.wantErr {
				if !domain.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if len(repo.purchases) != 0 {
					t.Error("invalid input must not reach the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreatePurchase: %v", err)
			}
			if !p.PurchasedAt.Equal(fixedNow) {
				t.Errorf("PurchasedAt = %v; want the current time", p.PurchasedAt)
			}
		})
	}
}

func TestCreatePurchase_LookupFailurePropagates(t *testing.T) {
	svc := newTestService(newMockRepo())
	boom := domain.NewAppError(domain.CodeInternal, "database error", errors.New("down"))
	svc.users = stubUsers{err: boom}

	_, err := svc.CreatePurchase(context.Background(), validInput())
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestCreatePurchase_NormalizesOptionalFields(t *testing.T) {
	svc := newTestService(newMockRepo())
	in := validInput()
	in.PaymentMethod = strPtr("  card ")
	in.DiscountCode = strPtr("   ")

	p, err := svc.CreatePurchase(context.Background(), in)
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if p.PaymentMethod == nil || *p.PaymentMethod != "card" {
		t.Errorf("PaymentMethod = %v; want card", p.PaymentMethod)
	}
	if p.DiscountCode != nil {
		t.Errorf("DiscountCode = %q; want nil", *p.DiscountCode)
	}
}

func TestListPurchasesInPeriod(t *testing.T) {
	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	req := domain.PageRequest{PageNumber: 1, PageSize: 10}

	tests := []struct {
		name    string
		period  domain.Period
		wantErr bool
	}{
		{"valid", domain.Period{From: from, To: to}, false},
		{"empty", domain.Period{From: from, To: from}, true},
		{"reversed", domain.Period{From: to, To: from}, true},
		{"open ended", domain.Period{From: from}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			_, err := newTestService(repo).ListPurchasesInPeriod(context.Background(), tt.period, req)
			if tt.wantErr {
				if !domain.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if repo.periodCalls != 0 {
					t.Error("rejected period must not reach the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("ListPurchasesInPeriod: %v", err)
			}
			if repo.lastPeriod != tt.period {
				t.Errorf("repository saw %+v", repo.lastPeriod)
			}
		})
	}
}

func TestService_HasPurchased(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if owned, _ := svc.HasPurchased(ctx, userID, gameID); owned {
		t.Fatal("expected no purchase yet")
	}
	if _, err := svc.CreatePurchase(ctx, validInput()); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if owned, _ := svc.HasPurchased(ctx, userID, gameID); !owned {
		t.Error("expected the purchase to be found")
	}
}

func TestUpdatePurchase(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.CreatePurchase(ctx, validInput())
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	p.User = &domain.User{Username: "stale"}

	in := validInput()
	in.Quantity = 2
	updated, err := svc.UpdatePurchase(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}
	if updated.Quantity != 2 {
		t.Errorf("Quantity = %d; want 2", updated.Quantity)
	}
	if updated.User != nil {
		t.Error("expected loaded relations to be dropped on update")
	}

	if err := svc.DeletePurchase(ctx, p.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if _, err := svc.UpdatePurchase(ctx, p.ID, in); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound for deleted purchase, got %v", err)
	}
	if err := svc.PurgePurchase(ctx, p.ID); err != nil {
		t.Fatalf("PurgePurchase: %v", err)
	}
}
