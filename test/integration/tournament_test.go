//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/bingoo/platform/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tournamentView struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	Participants int       `json:"participants"`
}

func getTournament(t *testing.T, env *testutil.TestEnv, id uuid.UUID, token string) tournamentView {
	t.Helper()
	resp := env.AuthGET("/tournaments/"+id.String(), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view tournamentView
	testutil.DecodeJSON(t, resp, &view)
	return view
}

func TestJoin_DebitsEntryFee(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("join@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 100)
	tID := env.CreateTournament("Spring Cup", 30, 10)

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var joined struct {
		Participant struct {
			UserID uuid.UUID `json:"user_id"`
			Score  int64     `json:"score"`
		} `json:"participant"`
		Transaction *struct {
			Type   string `json:"type"`
			Points int64  `json:"points"`
		} `json:"transaction"`
		Points int64 `json:"points"`
	}
	testutil.DecodeJSON(t, resp, &joined)
	assert.Equal(t, userID, joined.Participant.UserID)
	require.NotNil(t, joined.Transaction)
	assert.Equal(t, "TOURNAMENT_ENTRY", joined.Transaction.Type)
	assert.Equal(t, int64(-30), joined.Transaction.Points)
	assert.Equal(t, int64(70), joined.Points)

	assert.Equal(t, 1, getTournament(t, env, tID, token).Participants)
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, tID, "bingoo.tournament.joined"))
}

func TestJoin_FreeTournamentWritesNoTransaction(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("free@test.com", "securepass123", "DE")
	tID := env.CreateTournament("Free Roll", 0, 0)

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 0, testutil.CountTransactions(t, env, userID, ""))
}

func TestJoin_TwiceIsAlreadyJoined(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("twice@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 100)
	tID := env.CreateTournament("Double", 20, 10)

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ALREADY_JOINED")

	assert.Equal(t, 1, getTournament(t, env, tID, token).Participants)
	assert.Equal(t, int64(80), testutil.UserPoints(t, env, userID))
}

func TestJoin_InsufficientPoints(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("nofee@test.com", "securepass123", "DE")
	env.SeedPoints(userID, 10)
	tID := env.CreateTournament("Pricey", 50, 10)

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_POINTS")

	assert.Equal(t, 0, getTournament(t, env, tID, token).Participants)
	assert.Equal(t, int64(10), testutil.UserPoints(t, env, userID))
}

func TestJoin_Full(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tID := env.CreateTournament("Tiny", 0, 1)

	first, _ := env.RegisterUser("first@test.com", "securepass123", "DE")
	second, _ := env.RegisterUser("second@test.com", "securepass123", "DE")

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, second)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "TOURNAMENT_FULL")
}

func TestJoin_ConcurrentRespectsCapacity(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tID := env.CreateTournament("Rush", 0, 3)

	const players = 8
	tokens := make([]string, players)
	for i := range tokens {
		tokens[i], _ = env.RegisterUser(testutil.UniqueEmail("rush"), "securepass123", "DE")
	}

	var wg sync.WaitGroup
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, tok)
			resp.Body.Close()
		}(tok)
	}
	wg.Wait()

	assert.Equal(t, 3, getTournament(t, env, tID, tokens[0]).Participants)
}

func TestJoin_RegistrationClosed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("tadmin@test.com")
	token, _ := env.RegisterUser("late@test.com", "securepass123", "DE")
	tID := env.CreateTournament("Started", 0, 0)

	resp := env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "IN_PROGRESS"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "REGISTRATION_CLOSED")
}

func TestJoin_UnknownTournament(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("lost@test.com", "securepass123", "DE")

	resp := env.AuthPOST("/tournaments/"+uuid.NewString()+"/join", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestLeaderboard_OrderedByScore(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("scorer@test.com")
	tID := env.CreateTournament("Scored", 0, 0)

	tokA, idA := env.RegisterUser("alpha@test.com", "securepass123", "DE")
	tokB, idB := env.RegisterUser("bravo@test.com", "securepass123", "DE")
	for _, tok := range []string{tokA, tokB} {
		resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, tok)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// Scores are only accepted while the tournament runs.
	resp := env.AuthPUT("/admin/tournaments/"+tID.String()+"/participants/"+idA.String()+"/score", map[string]int64{"score": 10}, adminToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "IN_PROGRESS"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for id, score := range map[uuid.UUID]int64{idA: 10, idB: 25} {
		resp = env.AuthPUT("/admin/tournaments/"+tID.String()+"/participants/"+id.String()+"/score", map[string]int64{"score": score}, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp = env.AuthGET("/tournaments/"+tID.String()+"/leaderboard", tokA)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board []struct {
		UserID uuid.UUID `json:"user_id"`
		Score  int64     `json:"score"`
	}
	testutil.DecodeJSON(t, resp, &board)
	require.Len(t, board, 2)
	assert.Equal(t, idB, board[0].UserID)
	assert.Equal(t, int64(25), board[0].Score)
	assert.Equal(t, idA, board[1].UserID)
}

func TestSetScore_StatusAndMembership(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("judge@test.com")
	tID := env.CreateTournament("Judged", 0, 0)
	tok, member := env.RegisterUser("member@test.com", "securepass123", "DE")
	_, outsider := env.RegisterUser("outsider@test.com", "securepass123", "DE")

	resp := env.AuthPOST("/tournaments/"+tID.String()+"/join", nil, tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "IN_PROGRESS"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	scoreURL := func(tournament, user uuid.UUID) string {
		return "/admin/tournaments/" + tournament.String() + "/participants/" + user.String() + "/score"
	}

	resp = env.AuthPUT(scoreURL(tID, outsider), map[string]int64{"score": 5}, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")

	resp = env.AuthPUT(scoreURL(uuid.New(), member), map[string]int64{"score": 5}, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")

	resp = env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "FINISHED"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPUT(scoreURL(tID, member), map[string]int64{"score": 5}, adminToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "CONFLICT")

	var score int64
	err := env.Pool.QueryRow(context.Background(),
		`SELECT score FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2`, tID, member).Scan(&score)
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)
}

func TestTournamentStatus_InvalidTransition(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("trans@test.com")
	tID := env.CreateTournament("Flow", 0, 0)

	resp := env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "CANCELLED"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPATCH("/admin/tournaments/"+tID.String()+"/status", map[string]string{"status": "IN_PROGRESS"}, adminToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "CONFLICT")
}
