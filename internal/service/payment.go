package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/guard"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/provider"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the external payment provider used to buy points.
type PaymentGateway interface {
	Name() string
	CreateOrder(ctx context.Context, referenceID string, amount decimal.Decimal, currency string) (*provider.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*provider.CaptureResult, error)
}

// PaymentService orchestrates point purchases: a PENDING deposit row, a provider
// order, then a capture that settles the row exactly once.
type PaymentService struct {
	pool     *pgxpool.Pool
	gateway  PaymentGateway
	users    repository.UserRepository
	txRepo   repository.TransactionRepository
	engine   *ledger.Engine
	circuit  *guard.CircuitBreaker
	inflight *guard.InFlightGuard
	limits   policy.DepositLimitPolicy
	fraud    *FraudDetector
	logger   *slog.Logger
	now      func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	pool *pgxpool.Pool,
	gateway PaymentGateway,
	users repository.UserRepository,
	txRepo repository.TransactionRepository,
	engine *ledger.Engine,
	circuit *guard.CircuitBreaker,
	inflight *guard.InFlightGuard,
	limits policy.DepositLimitPolicy,
	fraud *FraudDetector,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		pool:     pool,
		gateway:  gateway,
		users:    users,
		txRepo:   txRepo,
		engine:   engine,
		circuit:  circuit,
		inflight: inflight,
		limits:   limits,
		fraud:    fraud,
		logger:   logger,
		now:      time.Now,
	}
}

// DepositSession is returned when a deposit is opened.
type DepositSession struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	OrderID       string          `json:"order_id"`
	ApproveURL    string          `json:"approve_url,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Points        int64           `json:"points"`
}

// CreateDeposit prices amount in the caller's region, records a PENDING deposit and
// creates the provider order. A provider failure settles the row as FAILED.
func (s *PaymentService) CreateDeposit(ctx context.Context, id domain.Identity, amount decimal.Decimal) (*DepositSession, error) {
	user, err := s.users.FindByID(ctx, s.pool, id.UserID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", id.UserID.String())
	}

	region := regionOf(user)
	amount = amount.Round(2)
	points, err := policy.PointsForAmount(region, amount)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	dayStart := s.now().UTC().Truncate(24 * time.Hour)
	daily, err := s.txRepo.SumDepositsSince(ctx, s.pool, user.ID, dayStart)
	if err != nil {
		return nil, domain.ErrInternal("sum deposits", err)
	}
	if eval := policy.EvaluateDepositLimits(s.limits, amount, daily); !eval.Allowed {
		return nil, domain.ErrValidation(fmt.Sprintf("deposit exceeds %s limit of %s %s",
			eval.BreachedLimit, eval.LimitValue.StringFixed(2), region.Currency))
	}

	var pending *domain.Transaction
	err = infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		pending, err = s.engine.OpenDeposit(ctx, tx, domain.OpenDepositParams{
			UserID:   user.ID,
			Points:   points,
			Amount:   amount,
			Currency: region.Currency,
			Provider: s.gateway.Name(),
		})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "open deposit")
	}
	s.fraud.EvaluateAsync(user.ID)

	var order *provider.Order
	err = s.circuit.Execute(ctx, s.gateway.Name(), func(ctx context.Context) error {
		var err error
		order, err = s.gateway.CreateOrder(ctx, pending.ID.String(), amount, region.Currency)
		return err
	})
	if err != nil {
		s.logger.Error("create payment order failed", "transaction_id", pending.ID, "error", err)
		s.failDeposit(ctx, pending.ID)
		return nil, domain.Classify(err, "payment provider unavailable")
	}

	if err := s.txRepo.SetProviderRef(ctx, s.pool, pending.ID, s.gateway.Name(), order.ID); err != nil {
		return nil, domain.Classify(err, "record provider order")
	}

	s.logger.Info("deposit opened", "transaction_id", pending.ID, "user_id", user.ID,
		"amount", amount.StringFixed(2), "currency", region.Currency, "points", points)

	return &DepositSession{
		TransactionID: pending.ID,
		OrderID:       order.ID,
		ApproveURL:    order.ApproveURL,
		Amount:        amount,
		Currency:      region.Currency,
		Points:        points,
	}, nil
}

// CaptureDeposit captures the provider order behind a PENDING deposit and records the
// provider's declared outcome. Provider errors leave the deposit PENDING for a retry.
func (s *PaymentService) CaptureDeposit(ctx context.Context, id domain.Identity, txID uuid.UUID) (*domain.CommandResult, error) {
	key := txID.String()
	if res := s.inflight.Acquire(key); !res.Allowed {
		return nil, domain.ErrConflict("capture already in progress")
	}
	defer s.inflight.Release(key)

	pending, err := s.txRepo.FindByID(ctx, s.pool, txID)
	if err != nil {
		return nil, domain.ErrInternal("find transaction", err)
	}
	if pending == nil || (pending.UserID != id.UserID && !id.IsAdmin()) {
		return nil, domain.ErrNotFound("transaction", key)
	}
	if pending.Type != domain.TxDeposit {
		return nil, domain.ErrValidation("transaction is not a deposit")
	}
	if pending.Status != domain.TxStatusPending {
		return nil, domain.ErrConflict(fmt.Sprintf("transaction already %s", pending.Status))
	}
	if pending.ProviderRef == nil {
		return nil, domain.ErrConflict("deposit has no provider order")
	}

	var capture *provider.CaptureResult
	err = s.circuit.Execute(ctx, s.gateway.Name(), func(ctx context.Context) error {
		var err error
		capture, err = s.gateway.CaptureOrder(ctx, *pending.ProviderRef)
		return err
	})
	if err != nil {
		s.logger.Error("capture payment order failed", "transaction_id", txID, "error", err)
		return nil, domain.Classify(err, "payment provider unavailable")
	}

	outcome := domain.TxStatusFailed
	if capture.Completed {
		outcome = domain.TxStatusCompleted
	}

	result, err := s.settle(ctx, txID, outcome)
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit settled", "transaction_id", txID, "user_id", pending.UserID,
		"status", outcome, "capture_id", capture.CaptureID, "provider_status", capture.Status)
	if outcome == domain.TxStatusCompleted {
		s.fraud.EvaluateAsync(pending.UserID)
	}
	return result, nil
}

// SettleManually lets an admin record the outcome of a PENDING deposit.
func (s *PaymentService) SettleManually(ctx context.Context, id domain.Identity, txID uuid.UUID, outcome domain.TransactionStatus) (*domain.CommandResult, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	result, err := s.settle(ctx, txID, outcome)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit settled manually", "transaction_id", txID, "status", outcome, "admin_id", id.UserID)
	if outcome == domain.TxStatusCompleted {
		s.fraud.EvaluateAsync(result.Transaction.UserID)
	}
	return result, nil
}

// Refund reverses a COMPLETED deposit.
func (s *PaymentService) Refund(ctx context.Context, id domain.Identity, depositID uuid.UUID, reason string) (*domain.CommandResult, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}

	var result *domain.CommandResult
	err := infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteRefund(ctx, tx, domain.RefundParams{
			DepositID: depositID,
			AdminID:   id.UserID,
			Reason:    policy.CleanText(reason, 500),
		})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "refund deposit")
	}

	s.logger.Info("deposit refunded", "deposit_id", depositID, "refund_id", result.Transaction.ID, "admin_id", id.UserID)
	s.fraud.EvaluateAsync(result.Transaction.UserID)
	return result, nil
}

func (s *PaymentService) settle(ctx context.Context, txID uuid.UUID, outcome domain.TransactionStatus) (*domain.CommandResult, error) {
	var result *domain.CommandResult
	err := infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteSettleDeposit(ctx, tx, domain.SettleDepositParams{
			TransactionID: txID,
			Outcome:       outcome,
		})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "settle deposit")
	}
	return result, nil
}

func (s *PaymentService) failDeposit(ctx context.Context, txID uuid.UUID) {
	if _, err := s.settle(ctx, txID, domain.TxStatusFailed); err != nil {
		s.logger.Error("mark deposit failed", "transaction_id", txID, "error", err)
	}
}

// regionOf returns the user's stored region, falling back to their country.
func regionOf(u *domain.User) policy.Region {
	if r, ok := policy.RegionByID(u.Region); ok {
		return r
	}
	return policy.ResolveRegion(u.Country)
}
