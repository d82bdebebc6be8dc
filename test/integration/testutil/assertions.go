//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// UserPoints reads a user's point balance straight from the users table.
func UserPoints(t *testing.T, env *TestEnv, userID uuid.UUID) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var points int64
	if err := env.Pool.QueryRow(ctx, "SELECT points FROM users WHERE id = $1", userID).Scan(&points); err != nil {
		t.Fatalf("UserPoints: %v", err)
	}
	return points
}

// PrizeStock reads a prize's remaining stock.
func PrizeStock(t *testing.T, env *TestEnv, prizeID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stock int
	if err := env.Pool.QueryRow(ctx, "SELECT stock FROM prizes WHERE id = $1", prizeID).Scan(&stock); err != nil {
		t.Fatalf("PrizeStock: %v", err)
	}
	return stock
}

// CountTransactions returns the number of transactions of txType for a user; an empty type counts all.
func CountTransactions(t *testing.T, env *TestEnv, userID uuid.UUID, txType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND ($2 = '' OR type = $2)",
		userID, txType).Scan(&count)
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox events of eventType for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID uuid.UUID, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_outbox WHERE "aggregateId" = $1 AND "eventType" = $2`,
		aggregateID.String(), eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}

// SumLedgerPoints returns the signed sum of a user's COMPLETED transaction points.
func SumLedgerPoints(t *testing.T, env *TestEnv, userID uuid.UUID) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sum int64
	err := env.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(points), 0) FROM transactions WHERE user_id = $1 AND status = 'COMPLETED'",
		userID).Scan(&sum)
	if err != nil {
		t.Fatalf("SumLedgerPoints: %v", err)
	}
	return sum
}

// CountFraudAlerts returns the number of alerts of alertType raised for a user.
func CountFraudAlerts(t *testing.T, env *TestEnv, userID uuid.UUID, alertType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM fraud_alerts WHERE user_id = $1 AND type = $2",
		userID, alertType).Scan(&count)
	if err != nil {
		t.Fatalf("CountFraudAlerts: %v", err)
	}
	return count
}
