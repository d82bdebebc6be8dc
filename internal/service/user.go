package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// UserService serves the caller's account and the admin user console.
type UserService struct {
	pool   *pgxpool.Pool
	users  repository.UserRepository
	txRepo repository.TransactionRepository
	engine *ledger.Engine
	fraud  *FraudDetector
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	txRepo repository.TransactionRepository,
	engine *ledger.Engine,
	fraud *FraudDetector,
	logger *slog.Logger,
) *UserService {
	return &UserService{pool: pool, users: users, txRepo: txRepo, engine: engine, fraud: fraud, logger: logger}
}

// PointsView is the wallet summary.
type PointsView struct {
	Points   int64           `json:"points"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	Region   string          `json:"region"`
}

// Me returns the caller's account.
func (s *UserService) Me(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return s.get(ctx, id.UserID)
}

// Region returns the pricing region the caller belongs to.
func (s *UserService) Region(ctx context.Context, id domain.Identity) (policy.Region, error) {
	u, err := s.get(ctx, id.UserID)
	if err != nil {
		return policy.Region{}, err
	}
	return regionOf(u), nil
}

// Points returns the caller's point and monetary balances.
func (s *UserService) Points(ctx context.Context, id domain.Identity) (*PointsView, error) {
	u, err := s.get(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	r := regionOf(u)
	return &PointsView{Points: u.Points, Balance: u.Balance, Currency: r.Currency, Region: r.ID}, nil
}

// Transactions returns the caller's ledger, newest first. cursor is the last ID of the previous page.
func (s *UserService) Transactions(ctx context.Context, id domain.Identity, cursor *uuid.UUID, limit int) ([]domain.Transaction, error) {
	items, err := s.txRepo.ListByUser(ctx, s.pool, id.UserID, cursor, limit)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return items, nil
}

// List searches users for the admin console.
func (s *UserService) List(ctx context.Context, id domain.Identity, filter domain.UserFilter) ([]domain.User, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.ErrValidation("unknown role")
	}
	users, err := s.users.List(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("list users", err)
	}
	return users, nil
}

// Get returns one user for the admin console.
func (s *UserService) Get(ctx context.Context, id domain.Identity, userID uuid.UUID) (*domain.User, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.get(ctx, userID)
}

// SetStatus suspends or reactivates an account. Admins cannot suspend themselves.
func (s *UserService) SetStatus(ctx context.Context, id domain.Identity, userID uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if status != domain.UserStatusActive && status != domain.UserStatusSuspended {
		return nil, domain.ErrValidation("status must be active or suspended")
	}
	if userID == id.UserID && status == domain.UserStatusSuspended {
		return nil, domain.ErrValidation("cannot suspend your own account")
	}
	u, err := s.users.UpdateStatus(ctx, s.pool, userID, status)
	if err != nil {
		return nil, domain.ErrInternal("update user status", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	s.logger.Info("user status changed", "user_id", userID, "status", status, "admin_id", id.UserID)
	return u, nil
}

// SetRole grants or revokes the admin role.
func (s *UserService) SetRole(ctx context.Context, id domain.Identity, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ErrValidation("unknown role")
	}
	if userID == id.UserID && role != domain.RoleAdmin {
		return nil, domain.ErrValidation("cannot revoke your own admin role")
	}
	u, err := s.users.UpdateRole(ctx, s.pool, userID, role)
	if err != nil {
		return nil, domain.ErrInternal("update user role", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	s.logger.Info("user role changed", "user_id", userID, "role", role, "admin_id", id.UserID)
	return u, nil
}

// AdjustPoints applies a signed manual correction.
func (s *UserService) AdjustPoints(ctx context.Context, id domain.Identity, userID uuid.UUID, delta int64, reason string) (*domain.CommandResult, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	reason = policy.CleanText(reason, 500)
	if reason == "" {
		return nil, domain.ErrValidation("reason is required")
	}

	var result *domain.CommandResult
	err := infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteAdjust(ctx, tx, domain.AdjustParams{
			UserID:  userID,
			Delta:   delta,
			Reason:  reason,
			AdminID: id.UserID,
		})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "adjust points")
	}
	s.logger.Info("points adjusted", "user_id", userID, "delta", delta, "admin_id", id.UserID,
		"points_after", result.User.Points)
	s.fraud.EvaluateAsync(userID)
	return result, nil
}

// SearchTransactions is the admin transaction browser.
func (s *UserService) SearchTransactions(ctx context.Context, id domain.Identity, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrValidation("unknown transaction type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrValidation("unknown transaction status")
	}
	items, err := s.txRepo.Search(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("search transactions", err)
	}
	return items, nil
}

// Transaction returns one ledger row with its metadata for the admin console.
func (s *UserService) Transaction(ctx context.Context, id domain.Identity, txID uuid.UUID) (*domain.Transaction, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	t, err := s.txRepo.FindByID(ctx, s.pool, txID)
	if err != nil {
		return nil, domain.ErrInternal("find transaction", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("transaction", txID.String())
	}
	if len(t.Metadata) == 0 {
		t.Metadata = json.RawMessage(`{}`)
	}
	return t, nil
}

func (s *UserService) get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return u, nil
}
