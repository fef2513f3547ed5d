package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/rut"
)

var (
	ErrInvalidCredentials = errors.New("invalid RUT or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

const minPasswordLength = 8

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByRUT(ctx context.Context, rut string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByRUT(ctx context.Context, rut string) (bool, error)
	RecordLogin(ctx context.Context, id uuid.UUID, success bool, maxFailures int, lockFor time.Duration) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	access     *AccessRecorder
	log        *zap.Logger
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, access *AccessRecorder, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager, access: access, log: log}
}

func (s *AuthService) Login(ctx context.Context, rawRUT, password, ip string) (*domain.TokenPair, error) {
	id, err := rut.Normalize(rawRUT)
	if err != nil {
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByRUT(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("loading user: %w", err)
		}
		// Same cost as a real comparison so response time does not reveal
		// whether the RUT exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		s.recordFailure(ctx, id, nil, "unknown user", ip)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordFailure(ctx, id, &user.ID, "inactive", ip)
		return nil, ErrAccountInactive
	}

	if user.IsLocked() {
		s.recordFailure(ctx, id, &user.ID, "locked", ip)
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if err := s.userRepo.RecordLogin(ctx, user.ID, false, maxFailedAttempts, lockDuration); err != nil {
			s.log.Error("failed to record login attempt", zap.Error(err))
		}
		s.log.Warn("failed login attempt",
			zap.String("rut", id),
			zap.String("ip", ip),
		)
		s.recordFailure(ctx, id, &user.ID, "wrong password", ip)
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, true, maxFailedAttempts, lockDuration); err != nil {
		s.log.Error("failed to record login", zap.Error(err))
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.access.Record(ctx, &history.Event{
		EntityType: history.EntityUser,
		EntityID:   user.ID.String(),
		Kind:       history.KindLogin,
		Criticity:  history.CriticityLow,
		Summary:    "login from " + ip,
		ActorID:    &user.ID,
		ActorRole:  string(user.Role),
	})

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, nil
}

func (s *AuthService) recordFailure(ctx context.Context, rutID string, userID *uuid.UUID, why, ip string) {
	entity := rutID
	if userID != nil {
		entity = userID.String()
	}
	s.access.Record(ctx, &history.Event{
		EntityType: history.EntityUser,
		EntityID:   entity,
		Kind:       history.KindLoginFailed,
		Criticity:  history.CriticityMedium,
		Summary:    fmt.Sprintf("login failed for %s from %s: %s", rutID, ip, why),
		Reason:     why,
	})
}

// Refresh issues a new pair given a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

type CreateUserCommand struct {
	RUT      string
	FullName string
	Email    string
	Password string
	Role     domain.Role
}

func (s *AuthService) CreateUser(ctx context.Context, cmd *CreateUserCommand) (*domain.User, error) {
	var v validation
	id, err := rut.Normalize(cmd.RUT)
	v.check(err == nil, "rut is invalid")
	v.check(strings.TrimSpace(cmd.FullName) != "", "full_name is required")
	v.check(cmd.Role.IsValid(), "role is invalid")
	v.check(len(cmd.Password) >= minPasswordLength, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	if err := v.err(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByRUT(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, repository.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		RUT:          id,
		FullName:     strings.TrimSpace(cmd.FullName),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: string(hash),
		Role:         cmd.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return u, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPassword) < minPasswordLength {
		return &ValidationError{Fields: []string{fmt.Sprintf("password must be at least %d characters", minPasswordLength)}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{UserID: u.ID, RUT: u.RUT, Role: u.Role}
}
