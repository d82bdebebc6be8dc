package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bingoo/platform/internal/auth"
	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/guard"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login for both realms.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.UserRepository
	outbox  repository.OutboxRepository
	jwtMgr  *auth.JWTManager
	lockout *guard.Lockout
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	jwtMgr *auth.JWTManager,
	lockout *guard.Lockout,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:    pool,
		users:   users,
		outbox:  outbox,
		jwtMgr:  jwtMgr,
		lockout: lockout,
		logger:  logger,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Country  string `json:"country"`
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

// Register creates a user in the region resolved from their country.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Country = strings.ToUpper(strings.TrimSpace(input.Country))

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateCountry(input.Country); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         policy.CleanText(input.Name, 100),
		Role:         domain.RoleUser,
		Country:      input.Country,
		Region:       policy.ResolveRegion(input.Country).ID,
		Status:       domain.UserStatusActive,
	}

	err = infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewUserRegisteredEvent(user))
	})
	if err != nil {
		return nil, domain.Classify(err, "create user")
	}

	s.logger.Info("user registered", "user_id", user.ID, "region", user.Region)
	return s.issue(auth.RealmUser, user)
}

// Login authenticates a user and issues a user-realm token.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, input, auth.RealmUser, ip)
	if err != nil {
		return nil, err
	}
	return s.issue(auth.RealmUser, user)
}

// AdminLogin authenticates an ADMIN and issues an admin-realm token.
func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput, ip string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, input, auth.RealmAdmin, ip)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden("admin role required")
	}
	return s.issue(auth.RealmAdmin, user)
}

func (s *AuthService) authenticate(ctx context.Context, input LoginInput, realm auth.Realm, ip string) (*domain.User, error) {
	realmName := string(realm)
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ErrValidation("email and password are required")
	}

	if err := s.lockout.CheckLocked(ctx, email, realmName); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, s.pool, email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		s.lockout.RecordAttempt(ctx, email, realmName, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.lockout.RecordAttempt(ctx, email, realmName, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	s.lockout.RecordAttempt(ctx, email, realmName, ip, true)

	if user.Status != domain.UserStatusActive {
		return nil, domain.ErrForbidden("account is suspended")
	}
	return user, nil
}

func (s *AuthService) issue(realm auth.Realm, user *domain.User) (*AuthResult, error) {
	token, err := s.jwtMgr.GenerateToken(realm, user)
	if err != nil {
		return nil, domain.Classify(err, "generate token")
	}
	return &AuthResult{
		Token:     token,
		ExpiresIn: int64(s.jwtMgr.ExpiryFor(realm).Seconds()),
		User:      user,
	}, nil
}
