//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bingoo/platform/internal/app"
	"github.com/bingoo/platform/internal/auth"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TestJWTSecret = "integration-test-secret"
	TestDBHost    = "localhost"
	TestDBPort    = 5435
	TestDBUser    = "bingoo"
	TestDBPass    = "bingoo"
	TestDBName    = "bingoo_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server  *httptest.Server
	Pool    *pgxpool.Pool
	JWTMgr  *auth.JWTManager
	Gateway *FakeGateway
	Fraud   *service.FraudDetector
	t       *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "bingoo")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		_, err = bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName))
		if err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}

	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		// FindMigrationDir walks up from the package directory to db/migrations.
		if err := infra.RunMigrations(testDSN(), "", quietLogger()); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 20
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router and test DB.
// Payments go through a FakeGateway that completes captures unless told otherwise.
// Fraud evaluation is delegated to the worker, so no alerts are raised in the background.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return newTestEnv(t, service.FraudOptions{Inline: false})
}

// NewInlineFraudEnv is NewTestEnv with in-process fraud evaluation after every ledger
// mutation. Call WaitFraud before asserting on alerts; cleanup waits as well.
func NewInlineFraudEnv(t *testing.T) *TestEnv {
	t.Helper()
	return newTestEnv(t, service.FraudOptions{Inline: true, Timeout: 10 * time.Second})
}

func newTestEnv(t *testing.T, fraudOpts service.FraudOptions) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, 24*time.Hour, 8*time.Hour)
	gateway := NewFakeGateway()
	fraud := app.NewFraudDetector(pool, nil, fraudOpts, quietLogger())

	router := app.NewRouter(app.RouterDeps{
		Pool:          pool,
		JWTMgr:        jwtMgr,
		Logger:        quietLogger(),
		Gateway:       gateway,
		FraudDetector: fraud,
		CORSOrigin:    "*",
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server:  server,
		Pool:    pool,
		JWTMgr:  jwtMgr,
		Gateway: gateway,
		Fraud:   fraud,
		t:       t,
	}

	t.Cleanup(func() {
		server.Close()
		fraud.Wait()
		env.CleanAll()
	})

	env.CleanAll()

	return env
}

// WaitFraud blocks until background fraud evaluations have finished.
func (e *TestEnv) WaitFraud() {
	e.Fraud.Wait()
}
