//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraud_LosingPlayBurstRaisesOneAlert(t *testing.T) {
	env := testutil.NewInlineFraudEnv(t)
	token, userID := env.RegisterUser("losing@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 50)
	gameID := env.GameID("Fruit Match")

	for i := 0; i < 15; i++ {
		resp := env.AuthPOST("/games/"+gameID.String()+"/play", map[string]bool{"won": false}, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	env.WaitFraud()

	assert.Equal(t, 1, testutil.CountFraudAlerts(t, env, userID, domain.AlertTooManyTransactions))
	assert.Equal(t, 0, testutil.CountFraudAlerts(t, env, userID, domain.AlertSuspiciousWinnings))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, userID, string(domain.EventFraudAlertRaised)))
}

func TestFraud_TournamentJoinsAreEvaluated(t *testing.T) {
	env := testutil.NewInlineFraudEnv(t)
	token, userID := env.RegisterUser("joiner@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 100)

	for i := 0; i < 11; i++ {
		tID := env.CreateTournament(fmt.Sprintf("Cup %d", i), 1, 0)
		resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	env.WaitFraud()

	assert.Equal(t, 1, testutil.CountFraudAlerts(t, env, userID, domain.AlertTooManyTransactions))
}

func TestFraud_AdminAdjustmentsAreEvaluated(t *testing.T) {
	env := testutil.NewInlineFraudEnv(t)
	adminToken, _ := env.CreateAdmin("adjuster@test.com")
	_, userID := env.RegisterUser("adjusted@test.com", "securepass123", "DE")

	for i := 0; i < 11; i++ {
		resp := env.AuthPOST("/admin/users/"+userID.String()+"/points",
			map[string]interface{}{"delta": 5, "reason": "goodwill"}, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	env.WaitFraud()

	assert.Equal(t, 1, testutil.CountFraudAlerts(t, env, userID, domain.AlertTooManyTransactions))
}

func TestFraud_QuietActivityRaisesNothing(t *testing.T) {
	env := testutil.NewInlineFraudEnv(t)
	token, userID := env.RegisterUser("quiet@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 50)
	gameID := env.GameID("Fruit Match")

	for i := 0; i < 3; i++ {
		resp := env.AuthPOST("/games/"+gameID.String()+"/play", map[string]bool{"won": false}, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	env.WaitFraud()

	assert.Equal(t, 0, testutil.CountFraudAlerts(t, env, userID, domain.AlertTooManyTransactions))
}
