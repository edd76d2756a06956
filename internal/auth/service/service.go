package service

import (
	"context"
	"errors"
	"time"

	"consulting_leads_backend/internal/auth/password"
	"consulting_leads_backend/internal/auth/repository"
	"consulting_leads_backend/internal/auth/token"
	"consulting_leads_backend/platform/apperr"
	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/httpkit"
	"consulting_leads_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")

// RoleAdmin grants access to every /api/v1/admin route.
const RoleAdmin = "admin"

// Profile is the account information exposed to handlers.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Roles     []string
	CreatedAt time.Time
}

type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// CreateAdmin stores a new admin account. An existing email is a conflict.
func (s *Service) CreateAdmin(ctx context.Context, email, plainPassword string) (Profile, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return Profile{}, err
	}

	user, err := s.repo.CreateUser(ctx, email, hash, []string{RoleAdmin})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return Profile{}, apperr.Conflict(err.Error())
		}
		return Profile{}, apperr.Persistence("create admin", err)
	}
	return toProfile(user), nil
}

// ResetPassword replaces an admin password and revokes every session.
func (s *Service) ResetPassword(ctx context.Context, email, plainPassword string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("admin not found")
		}
		return apperr.Persistence("get admin", err)
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.Persistence("update password", err)
	}
	return s.repo.RevokeAllRefreshTokens(ctx, user.ID)
}

// SignIn returns an access JWT and a new refresh token.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown account")
		return "", "", apperr.Unauthorized(ErrInvalidCredentials.Error())
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "password mismatch")
		return "", "", apperr.Unauthorized(ErrInvalidCredentials.Error())
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return "", "", err
	}
	s.log.AuthEvent("sign_in", user.Email, true, "")
	return access, refresh, nil
}

// Refresh rotates the refresh token. The presented token is revoked whether
// or not it is still valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", apperr.Unauthorized(ErrTokenInvalid.Error())
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	if s.now().After(expiresAt) {
		return "", "", apperr.Unauthorized(ErrTokenExpired.Error())
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", apperr.Unauthorized(ErrTokenInvalid.Error())
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken)); err != nil {
		return apperr.Persistence("revoke refresh token", err)
	}
	return nil
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, apperr.NotFound("admin not found")
		}
		return Profile{}, apperr.Persistence("get admin", err)
	}
	return toProfile(user), nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (string, string, error) {
	accessToken, err := s.signJWT(user.ID, user.Roles)
	if err != nil {
		return "", "", err
	}

	refreshToken, hash, err := token.NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	expiresAt := s.now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", apperr.Persistence("store refresh token", err)
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string) (string, error) {
	claims := httpkit.NewAccessClaims(userID, roles, s.now(), s.cfg.GetAccessTokenTTL())
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(user repository.User) Profile {
	return Profile{
		ID:        user.ID,
		Email:     user.Email,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}
