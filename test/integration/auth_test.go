//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/bingoo/platform/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ResolvesRegionFromCountry(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("mx@test.com", "securepass123", "MX")
	require.NotEmpty(t, token)
	require.NotEqual(t, uuid.Nil, userID)

	resp := env.AuthGET("/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		ID      uuid.UUID `json:"id"`
		Region  string    `json:"region"`
		Country string    `json:"country"`
		Points  int64     `json:"points"`
		Role    string    `json:"role"`
	}
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "LATIN_AMERICA", me.Region)
	assert.Equal(t, "MX", me.Country)
	assert.Equal(t, int64(0), me.Points)
	assert.Equal(t, "USER", me.Role)
}

func TestRegister_UnknownCountryFallsBackToEurope(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("zz@test.com", "securepass123", "ZZ")

	resp := env.AuthGET("/me/region", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var region struct {
		Region   string `json:"region"`
		Currency string `json:"currency"`
	}
	testutil.DecodeJSON(t, resp, &region)
	assert.Equal(t, "EUROPE", region.Region)
	assert.Equal(t, "EUR", region.Currency)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("dup@test.com", "securepass123", "DE")

	resp := env.POST("/auth/register", map[string]string{
		"email": "DUP@test.com", "password": "securepass123", "country": "DE",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "CONFLICT")
}

func TestRegister_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)

	cases := []map[string]string{
		{"email": "not-an-email", "password": "securepass123", "country": "DE"},
		{"email": "short@test.com", "password": "short", "country": "DE"},
		{"email": "country@test.com", "password": "securepass123", "country": "DEU"},
	}
	for _, body := range cases {
		resp := env.POST("/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
	}
}

func TestRegister_EmitsOutboxEvent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, userID := env.RegisterUser("outbox@test.com", "securepass123", "US")

	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, userID, "bingoo.user.registered"))
}

func TestLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("login@test.com", "securepass123", "DE")

	token := env.LoginUser("login@test.com", "securepass123")
	resp := env.AuthGET("/me", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("wrong@test.com", "securepass123", "DE")

	resp := env.POST("/auth/login", map[string]string{"email": "wrong@test.com", "password": "badpass123"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("lock@test.com", "securepass123", "DE")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{"email": "lock@test.com", "password": "badpass123"}, "")
		resp.Body.Close()
	}

	// The correct password is refused while the lock holds.
	resp := env.POST("/auth/login", map[string]string{"email": "lock@test.com", "password": "securepass123"}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ACCOUNT_LOCKED")
}

func TestLogin_SuspendedUserRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, userID := env.RegisterUser("susp@test.com", "securepass123", "DE")
	adminToken, _ := env.CreateAdmin("admin@test.com")

	resp := env.AuthPATCH("/admin/users/"+userID.String()+"/status", map[string]string{"status": "suspended"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.POST("/auth/login", map[string]string{"email": "susp@test.com", "password": "securepass123"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "FORBIDDEN")
}

func TestAdminLogin_RequiresAdminRole(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterUser("plain@test.com", "securepass123", "DE")

	resp := env.POST("/auth/admin/login", map[string]string{"email": "plain@test.com", "password": "securepass123"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "FORBIDDEN")
}

func TestRealmSeparation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userToken, _ := env.RegisterUser("realm@test.com", "securepass123", "DE")
	adminToken, _ := env.CreateAdmin("realmadmin@test.com")

	t.Run("user token on admin route", func(t *testing.T) {
		resp := env.AuthGET("/admin/users", userToken)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin token on user route", func(t *testing.T) {
		resp := env.AuthGET("/me", adminToken)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := testutil.NewTestEnv(t)

	for _, path := range []string{"/me", "/wallet/points", "/wallet/transactions", "/prizes", "/games", "/history", "/tournaments"} {
		resp := env.GET(path)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}

	resp := env.AuthGET("/me", "garbage.token.value")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndRegions(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/health")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.GET("/regions")
	var regions []struct {
		Region        string `json:"region"`
		PointsPerPlay int64  `json:"points_per_play"`
	}
	testutil.DecodeJSON(t, resp, &regions)
	assert.Len(t, regions, 5)
}

func TestCORSPreflight(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.OPTIONS("/me")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
