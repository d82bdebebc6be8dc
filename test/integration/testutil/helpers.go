//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID uuid.UUID `json:"id"`
	} `json:"user"`
}

// RegisterUser creates a new user and returns the auth token and user ID.
func (env *TestEnv) RegisterUser(email, password, country string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"country":  country,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterUser: expected 201, got %d", resp.StatusCode)
	}

	var result authResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterUser: decode: %v", err)
	}
	return result.Token, result.User.ID
}

// LoginUser authenticates an existing user and returns the auth token.
func (env *TestEnv) LoginUser(email, password string) string {
	env.t.Helper()
	return env.login("/auth/login", email, password)
}

// CreateAdmin inserts an ADMIN account and returns an admin-realm token for it.
func (env *TestEnv) CreateAdmin(email string) (token string, adminID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const password = "adminpass123"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		env.t.Fatalf("CreateAdmin: hash: %v", err)
	}
	err = env.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, country, region)
		VALUES ($1, $2, 'Test Admin', 'ADMIN', 'DE', 'EUROPE') RETURNING id`,
		email, string(hash)).Scan(&adminID)
	if err != nil {
		env.t.Fatalf("CreateAdmin: insert: %v", err)
	}
	return env.login("/auth/admin/login", email, password), adminID
}

func (env *TestEnv) login(path, email, password string) string {
	env.t.Helper()
	resp := env.POST(path, map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("login %s: expected 200, got %d", path, resp.StatusCode)
	}

	var result authResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("login %s: decode: %v", path, err)
	}
	return result.Token
}

// SeedPoints credits points directly with a COMPLETED adjustment, bypassing the API.
func (env *TestEnv) SeedPoints(userID uuid.UUID, points int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := env.Pool.Begin(ctx)
	if err != nil {
		env.t.Fatalf("SeedPoints: begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"UPDATE users SET points = points + $2, updated_at = now() WHERE id = $1",
		userID, points)
	if err != nil {
		env.t.Fatalf("SeedPoints: update: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, currency, points, status, metadata, completed_at)
		VALUES ($1, 'ADJUSTMENT', 'EUR', $2, 'COMPLETED', '{"reason":"test seed"}', now())`,
		userID, points)
	if err != nil {
		env.t.Fatalf("SeedPoints: insert tx: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		env.t.Fatalf("SeedPoints: commit: %v", err)
	}
}

// CreatePrize inserts an active prize claimable from every region.
func (env *TestEnv) CreatePrize(name string, pointValue int64, stock int) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var prizeID uuid.UUID
	err := env.Pool.QueryRow(ctx, `
		INSERT INTO prizes (name, category, point_value, stock)
		VALUES ($1, 'FOOD', $2, $3) RETURNING id`,
		name, pointValue, stock).Scan(&prizeID)
	if err != nil {
		env.t.Fatalf("CreatePrize: %v", err)
	}
	return prizeID
}

// CreateTournament inserts a REGISTERING tournament.
func (env *TestEnv) CreateTournament(name string, entryFee int64, maxPlayers int) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id uuid.UUID
	err := env.Pool.QueryRow(ctx, `
		INSERT INTO tournaments (name, entry_fee, max_players)
		VALUES ($1, $2, $3) RETURNING id`,
		name, entryFee, maxPlayers).Scan(&id)
	if err != nil {
		env.t.Fatalf("CreateTournament: %v", err)
	}
	return id
}

// GameID returns the ID of a seeded game by name.
func (env *TestEnv) GameID(name string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id uuid.UUID
	if err := env.Pool.QueryRow(ctx, "SELECT id FROM games WHERE name = $1", name).Scan(&id); err != nil {
		env.t.Fatalf("GameID %q: %v", name, err)
	}
	return id
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, "")
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, body, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPut, path, body, token)
}

// OPTIONS performs an OPTIONS request.
func (env *TestEnv) OPTIONS(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodOptions, path, nil, "")
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// UniqueEmail returns a collision-free address for tests that create many users.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%s@test.com", prefix, uuid.NewString()[:8])
}
