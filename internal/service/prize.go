package service

import (
	"context"
	"log/slog"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PrizeService serves the prize catalog and runs claims.
type PrizeService struct {
	pool   *pgxpool.Pool
	prizes repository.PrizeRepository
	users  repository.UserRepository
	engine *ledger.Engine
	fraud  *FraudDetector
	logger *slog.Logger
}

// NewPrizeService creates a PrizeService.
func NewPrizeService(
	pool *pgxpool.Pool,
	prizes repository.PrizeRepository,
	users repository.UserRepository,
	engine *ledger.Engine,
	fraud *FraudDetector,
	logger *slog.Logger,
) *PrizeService {
	return &PrizeService{pool: pool, prizes: prizes, users: users, engine: engine, fraud: fraud, logger: logger}
}

// ListForUser returns the claimable prizes for the caller's region.
func (s *PrizeService) ListForUser(ctx context.Context, id domain.Identity, category domain.PrizeCategory) ([]domain.Prize, error) {
	user, err := s.users.FindByID(ctx, s.pool, id.UserID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", id.UserID.String())
	}
	if category != "" && !category.Valid() {
		return nil, domain.ErrValidation("unknown prize category")
	}

	prizes, err := s.prizes.List(ctx, s.pool, domain.PrizeFilter{
		Region:        user.Region,
		Category:      category,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, domain.ErrInternal("list prizes", err)
	}
	return prizes, nil
}

// Claim exchanges the caller's points for a prize.
func (s *PrizeService) Claim(ctx context.Context, id domain.Identity, prizeID uuid.UUID) (*domain.ClaimResult, error) {
	var result *domain.ClaimResult
	err := infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteClaim(ctx, tx, domain.ClaimParams{UserID: id.UserID, PrizeID: prizeID})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "claim prize")
	}

	s.logger.Info("prize claimed", "user_id", id.UserID, "prize_id", prizeID,
		"points", result.History.Points, "stock_after", result.Prize.Stock)
	s.fraud.EvaluateAsync(id.UserID)
	return result, nil
}

// AdminList returns the whole catalog, optionally filtered.
func (s *PrizeService) AdminList(ctx context.Context, id domain.Identity, filter domain.PrizeFilter) ([]domain.Prize, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	prizes, err := s.prizes.List(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("list prizes", err)
	}
	return prizes, nil
}

// Create adds a prize to the catalog.
func (s *PrizeService) Create(ctx context.Context, id domain.Identity, in domain.PrizeInput) (*domain.Prize, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	in, err := cleanPrizeInput(in)
	if err != nil {
		return nil, err
	}
	p, err := s.prizes.Create(ctx, s.pool, in)
	if err != nil {
		return nil, domain.ErrInternal("create prize", err)
	}
	s.logger.Info("prize created", "prize_id", p.ID, "admin_id", id.UserID)
	return p, nil
}

// Update replaces a prize's editable fields.
func (s *PrizeService) Update(ctx context.Context, id domain.Identity, prizeID uuid.UUID, in domain.PrizeInput) (*domain.Prize, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	in, err := cleanPrizeInput(in)
	if err != nil {
		return nil, err
	}
	p, err := s.prizes.Update(ctx, s.pool, prizeID, in)
	if err != nil {
		return nil, domain.ErrInternal("update prize", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("prize", prizeID.String())
	}
	return p, nil
}

// SetActive activates or deactivates a prize.
func (s *PrizeService) SetActive(ctx context.Context, id domain.Identity, prizeID uuid.UUID, active bool) (*domain.Prize, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	p, err := s.prizes.SetActive(ctx, s.pool, prizeID, active)
	if err != nil {
		return nil, domain.ErrInternal("set prize active", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("prize", prizeID.String())
	}
	return p, nil
}

// Restock adds stock. It does not reactivate a deactivated prize.
func (s *PrizeService) Restock(ctx context.Context, id domain.Identity, prizeID uuid.UUID, quantity int) (*domain.Prize, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrValidation("quantity must be positive")
	}
	p, err := s.prizes.Restock(ctx, s.pool, prizeID, quantity)
	if err != nil {
		return nil, domain.ErrInternal("restock prize", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("prize", prizeID.String())
	}
	return p, nil
}

func cleanPrizeInput(in domain.PrizeInput) (domain.PrizeInput, error) {
	in.Name = policy.CleanText(in.Name, 200)
	in.Description = policy.CleanText(in.Description, 2000)
	if in.Region != nil {
		if _, ok := policy.RegionByID(*in.Region); !ok {
			return in, domain.ErrValidation("unknown region")
		}
	}
	if err := domain.ValidatePrizeInput(in); err != nil {
		return in, domain.ErrValidation(err.Error())
	}
	return in, nil
}
