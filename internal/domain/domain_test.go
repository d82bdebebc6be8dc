package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"single char tld", "user@example.c", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, ValidateCurrency("EUR"))
	assert.NoError(t, ValidateCurrency("USD"))
	assert.Error(t, ValidateCurrency("eur"))
	assert.Error(t, ValidateCurrency("EURO"))
	assert.Error(t, ValidateCurrency(""))
}

func TestValidateCountry(t *testing.T) {
	tests := []struct {
		country string
		wantErr bool
	}{
		{"DE", false},
		{"us", false},
		{" fr ", false},
		{"ZZ", false},
		{"", true},
		{"D", true},
		{"DEU", true},
		{"1A", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.country), func(t *testing.T) {
			err := ValidateCountry(tt.country)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePositivePoints(t *testing.T) {
	require.NoError(t, ValidatePositivePoints(1))
	for _, v := range []int64{0, -1, -9223372036854775808} {
		err := ValidatePositivePoints(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "points must be positive")
	}
}

func TestValidatePrizeInput(t *testing.T) {
	valid := PrizeInput{Name: "Burger voucher", Category: CategoryFood, PointValue: 20, Stock: 3}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidatePrizeInput(valid))
	})

	t.Run("blank name", func(t *testing.T) {
		in := valid
		in.Name = "  "
		require.ErrorContains(t, ValidatePrizeInput(in), "name is required")
	})

	t.Run("unknown category", func(t *testing.T) {
		in := valid
		in.Category = "TOYS"
		require.ErrorContains(t, ValidatePrizeInput(in), "invalid category")
	})

	t.Run("zero point value", func(t *testing.T) {
		in := valid
		in.PointValue = 0
		require.ErrorContains(t, ValidatePrizeInput(in), "pointValue must be positive")
	})

	t.Run("negative stock", func(t *testing.T) {
		in := valid
		in.Stock = -1
		require.ErrorContains(t, ValidatePrizeInput(in), "stock must not be negative")
	})
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("prize", "abc-123")
		assert.Equal(t, "NOT_FOUND: prize abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		err := ErrInternal("database error", errors.New("connection refused"))
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_IsMatchesCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("claim: %w", ErrInsufficientPoints())
	assert.True(t, errors.Is(err, ErrInsufficientPoints()))
	assert.False(t, errors.Is(err, ErrPrizeUnavailable("x")))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("prize", "123"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict("already exists"), "CONFLICT", 409},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", 403},
		{"ErrInsufficientPoints", ErrInsufficientPoints(), "INSUFFICIENT_POINTS", 400},
		{"ErrPrizeUnavailable", ErrPrizeUnavailable("inactive"), "PRIZE_UNAVAILABLE", 409},
		{"ErrTournamentFull", ErrTournamentFull(), "TOURNAMENT_FULL", 409},
		{"ErrRegistrationClosed", ErrRegistrationClosed(), "REGISTRATION_CLOSED", 409},
		{"ErrAlreadyJoined", ErrAlreadyJoined(), "ALREADY_JOINED", 409},
		{"ErrAccountLocked", ErrAccountLocked("too many attempts"), "ACCOUNT_LOCKED", 429},
		{"ErrRateLimited", ErrRateLimited("slow down"), "RATE_LIMITED", 429},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil, "x"))

	domainErr := fmt.Errorf("join: %w", ErrTournamentFull())
	assert.Same(t, domainErr, Classify(domainErr, "join failed"))

	classified := Classify(errors.New("deadlock detected"), "join failed")
	appErr := AsAppError(classified)
	require.NotNil(t, appErr)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, "join failed", appErr.Message)
}

// --- Status Transition Tests ---

func TestTransactionStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TxStatusPending, TxStatusCompleted, true},
		{TxStatusPending, TxStatusFailed, true},
		{TxStatusPending, TxStatusPending, false},
		{TxStatusCompleted, TxStatusFailed, false},
		{TxStatusCompleted, TxStatusCompleted, false},
		{TxStatusFailed, TxStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTournamentStatus_CanTransition(t *testing.T) {
	assert.True(t, TournamentRegistering.CanTransition(TournamentInProgress))
	assert.True(t, TournamentRegistering.CanTransition(TournamentCancelled))
	assert.True(t, TournamentInProgress.CanTransition(TournamentFinished))
	assert.False(t, TournamentRegistering.CanTransition(TournamentFinished))
	assert.False(t, TournamentFinished.CanTransition(TournamentRegistering))
	assert.False(t, TournamentCancelled.CanTransition(TournamentInProgress))
}

// --- Prize Tests ---

func TestPrize_Claimable(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		stock  int
		want   bool
	}{
		{"active with stock", true, 1, true},
		{"inactive", false, 5, false},
		{"out of stock", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prize{Active: tt.active, Stock: tt.stock}
			assert.Equal(t, tt.want, p.Claimable())
		})
	}
}

func TestPrize_AvailableIn(t *testing.T) {
	global := &Prize{}
	assert.True(t, global.AvailableIn("EUROPE"))

	region := "ASIA_PACIFIC"
	local := &Prize{Region: &region}
	assert.True(t, local.AvailableIn("ASIA_PACIFIC"))
	assert.False(t, local.AvailableIn("EUROPE"))
}

// --- Identity Tests ---

func TestIdentity_RequireAdmin(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		require.NoError(t, Identity{UserID: uuid.New(), Role: RoleAdmin}.RequireAdmin())
	})

	t.Run("user is forbidden", func(t *testing.T) {
		err := Identity{UserID: uuid.New(), Role: RoleUser}.RequireAdmin()
		assert.Equal(t, CodeForbidden, AsAppError(err).Code)
	})

	t.Run("empty identity is unauthorized", func(t *testing.T) {
		err := Identity{}.RequireAdmin()
		assert.Equal(t, CodeUnauthorized, AsAppError(err).Code)
	})
}

// --- BalanceUpdate Tests ---

func TestBalanceUpdate_HasDelta(t *testing.T) {
	assert.False(t, BalanceUpdate{}.HasPointsDelta())
	assert.False(t, BalanceUpdate{}.HasBalanceDelta())
	assert.True(t, BalanceUpdate{Points: -5}.HasPointsDelta())
	assert.True(t, BalanceUpdate{Balance: decimal.RequireFromString("9.99")}.HasBalanceDelta())
}

// --- Event Factory Tests ---

func TestNewTransactionPostedEvent(t *testing.T) {
	userID := uuid.New()
	tx := &Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Type:   TxClaim,
		Points: -20,
		Amount: decimal.Zero,
		Status: TxStatusCompleted,
	}

	event := NewTransactionPostedEvent(tx)

	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, AggregateLedger, event.AggregateType)
	assert.Equal(t, userID.String(), event.AggregateID)
	assert.Equal(t, EventTransactionPosted, event.EventType)
	assert.Equal(t, userID.String(), event.PartitionKey)
	assert.Equal(t, string(EventTransactionPosted), event.Topic())
	assert.False(t, event.OccurredAt.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(-20), payload["points"])
	assert.Equal(t, "CLAIM", payload["type"])
}

func TestNewPrizeClaimedEvent(t *testing.T) {
	userID := uuid.New()
	prize := &Prize{ID: uuid.New(), Stock: 0, Active: false}
	h := &GameHistory{ID: uuid.New(), UserID: userID, Won: true, Points: 2}

	event := NewPrizeClaimedEvent(h, prize)

	assert.Equal(t, AggregatePrize, event.AggregateType)
	assert.Equal(t, prize.ID.String(), event.AggregateID)
	assert.Equal(t, userID.String(), event.PartitionKey)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(2), payload["points"])
	assert.Equal(t, false, payload["active"])
}

func TestNewUserRegisteredEvent(t *testing.T) {
	u := &User{ID: uuid.New(), Email: "test@example.com", Region: "EUROPE"}
	event := NewUserRegisteredEvent(u)

	assert.Equal(t, EventUserRegistered, event.EventType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "test@example.com", payload["email"])
	assert.Equal(t, "EUROPE", payload["region"])
}

func TestValidateTournamentInput(t *testing.T) {
	assert.NoError(t, ValidateTournamentInput(TournamentInput{Name: "Friday cup", EntryFee: 10, MaxPlayers: 8}))
	assert.NoError(t, ValidateTournamentInput(TournamentInput{Name: "Free roll"}))
	assert.Error(t, ValidateTournamentInput(TournamentInput{Name: "  "}))
	assert.Error(t, ValidateTournamentInput(TournamentInput{Name: "x", EntryFee: -1}))
	assert.Error(t, ValidateTournamentInput(TournamentInput{Name: "x", MaxPlayers: -2}))
}
