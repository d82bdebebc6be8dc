package app

import (
	"log/slog"
	"time"

	"github.com/bingoo/platform/internal/auth"
	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/guard"
	"github.com/bingoo/platform/internal/handler"
	adminhandler "github.com/bingoo/platform/internal/handler/admin"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/notify"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/bingoo/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	Gateway       service.PaymentGateway
	Notifier      notify.FraudNotifier // nil disables notifications
	Fraud         service.FraudOptions
	FraudDetector *service.FraudDetector // built from Fraud and Notifier when nil
	DepositLimits policy.DepositLimitPolicy // zero value uses the defaults

	CORSOrigin         string
	RateLimitPerMinute int // 0 disables rate limiting
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	userRepo := repository.NewUserRepository()
	txRepo := repository.NewTransactionRepository()
	historyRepo := repository.NewGameHistoryRepository()
	gameRepo := repository.NewGameRepository()
	prizeRepo := repository.NewPrizeRepository()
	tournamentRepo := repository.NewTournamentRepository()
	outboxRepo := repository.NewOutboxRepository()
	statsRepo := repository.NewStatsRepository()

	// Ledger engine
	engine := ledger.NewEngine(ledger.Repositories{
		Users:        userRepo,
		Transactions: txRepo,
		History:      historyRepo,
		Prizes:       prizeRepo,
		Tournaments:  tournamentRepo,
		Games:        gameRepo,
		Outbox:       outboxRepo,
	})

	limits := deps.DepositLimits
	if limits.SingleDepositMax.IsZero() {
		limits = policy.DefaultDepositLimits()
	}

	// Guards
	lockout := guard.NewLockout(pool, logger)
	circuit := guard.NewCircuitBreaker(5, 30*time.Second)
	inflight := guard.NewInFlightGuard()

	// Services
	fraud := deps.FraudDetector
	if fraud == nil {
		fraud = NewFraudDetector(pool, deps.Notifier, deps.Fraud, logger)
	}
	authSvc := service.NewAuthService(pool, userRepo, outboxRepo, jwtMgr, lockout, logger)
	userSvc := service.NewUserService(pool, userRepo, txRepo, engine, fraud, logger)
	prizeSvc := service.NewPrizeService(pool, prizeRepo, userRepo, engine, fraud, logger)
	gameSvc := service.NewGameService(pool, gameRepo, historyRepo, userRepo, engine, fraud, logger)
	tournamentSvc := service.NewTournamentService(pool, tournamentRepo, engine, fraud, logger)
	paymentSvc := service.NewPaymentService(pool, deps.Gateway, userRepo, txRepo, engine, circuit, inflight, limits, fraud, logger)
	statsSvc := service.NewStatsService(pool, statsRepo, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	accountHandler := handler.NewAccountHandler(userSvc)
	prizeHandler := handler.NewPrizeHandler(prizeSvc)
	gameHandler := handler.NewGameHandler(gameSvc)
	tournamentHandler := handler.NewTournamentHandler(tournamentSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)

	// Admin handlers
	userAdmin := adminhandler.NewUserAdminHandler(userSvc)
	prizeAdmin := adminhandler.NewPrizeAdminHandler(prizeSvc)
	txAdmin := adminhandler.NewTransactionAdminHandler(userSvc, paymentSvc)
	tournamentAdmin := adminhandler.NewTournamentAdminHandler(tournamentSvc)
	fraudAdmin := adminhandler.NewFraudAdminHandler(fraud)
	reportsAdmin := adminhandler.NewReportsHandler(statsSvc)

	// Router
	r := chi.NewRouter()

	corsOrigin := deps.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(corsOrigin))
	r.Use(handler.JSONContentType)

	limit := func(r chi.Router) {}
	if deps.RateLimitPerMinute > 0 {
		limiter := guard.NewRateLimiter(deps.RateLimitPerMinute, time.Minute)
		limit = func(r chi.Router) { r.Use(handler.RateLimit(limiter)) }
	}

	// Public
	r.Get("/health", handler.HealthHandler(pool))
	r.Get("/regions", handler.RegionsHandler)

	r.Route("/auth", func(r chi.Router) {
		limit(r)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/admin/login", authHandler.AdminLogin)
	})

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))
		limit(r)

		r.Get("/me", accountHandler.GetMe)
		r.Get("/me/region", accountHandler.GetRegion)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/points", accountHandler.GetPoints)
			r.Get("/transactions", accountHandler.GetTransactions)
		})

		r.Route("/prizes", func(r chi.Router) {
			r.Get("/", prizeHandler.List)
			r.Post("/{id}/claim", prizeHandler.Claim)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.List)
			r.Post("/{id}/play", gameHandler.Play)
		})
		r.Get("/history", gameHandler.History)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Get("/{id}", tournamentHandler.Get)
			r.Post("/{id}/join", tournamentHandler.Join)
			r.Get("/{id}/leaderboard", tournamentHandler.Leaderboard)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/deposit", paymentHandler.Deposit)
			r.Post("/{id}/capture", paymentHandler.Capture)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		r.Use(auth.RequireRole(domain.RoleAdmin))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userAdmin.SearchUsers)
			r.Get("/{id}", userAdmin.GetUserDetail)
			r.Patch("/{id}/status", userAdmin.UpdateUserStatus)
			r.Patch("/{id}/role", userAdmin.UpdateUserRole)
			r.Post("/{id}/points", userAdmin.AdjustPoints)
		})

		r.Route("/prizes", func(r chi.Router) {
			r.Get("/", prizeAdmin.ListPrizes)
			r.Post("/", prizeAdmin.CreatePrize)
			r.Put("/{id}", prizeAdmin.UpdatePrize)
			r.Patch("/{id}/active", prizeAdmin.TogglePrize)
			r.Post("/{id}/restock", prizeAdmin.RestockPrize)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", txAdmin.ListTransactions)
			r.Get("/{id}", txAdmin.GetTransaction)
			r.Patch("/{id}/status", txAdmin.UpdateTransactionStatus)
			r.Post("/{id}/refund", txAdmin.RefundTransaction)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", tournamentAdmin.CreateTournament)
			r.Patch("/{id}/status", tournamentAdmin.UpdateTournamentStatus)
			r.Get("/{id}/participants", tournamentAdmin.ListParticipants)
			r.Put("/{id}/participants/{userID}/score", tournamentAdmin.SetScore)
		})

		r.Route("/fraud", func(r chi.Router) {
			r.Get("/alerts", fraudAdmin.ListAlerts)
			r.Post("/alerts/{id}/review", fraudAdmin.ReviewAlert)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", reportsAdmin.GetDashboardStats)
			r.Get("/daily", reportsAdmin.GetDailyStats)
			r.Get("/daily.xlsx", reportsAdmin.ExportDailyStats)
		})
	})

	return r
}

// NewFraudDetector builds the detector over the pgx repositories. Callers that need to
// wait for in-flight evaluations on shutdown build it here and pass it in RouterDeps.
func NewFraudDetector(pool *pgxpool.Pool, notifier notify.FraudNotifier, opts service.FraudOptions, logger *slog.Logger) *service.FraudDetector {
	return service.NewFraudDetector(pool,
		repository.NewTransactionRepository(),
		repository.NewGameHistoryRepository(),
		repository.NewFraudAlertRepository(),
		repository.NewOutboxRepository(),
		notifier, opts, logger)
}
