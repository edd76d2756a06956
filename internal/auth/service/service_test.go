package service

import (
	"context"
	"testing"
	"time"

	"consulting_leads_backend/internal/auth/password"
	"consulting_leads_backend/internal/auth/repository"
	"consulting_leads_backend/platform/apperr"
	"consulting_leads_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string         { return "test-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

type storedToken struct {
	userID    uuid.UUID
	expiresAt time.Time
	revoked   bool
}

type memoryRepo struct {
	users  map[uuid.UUID]repository.User
	tokens map[string]*storedToken
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[uuid.UUID]repository.User{}, tokens: map[string]*storedToken{}}
}

func (m *memoryRepo) CreateUser(_ context.Context, email, hash string, roles []string) (repository.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return repository.User{}, repository.ErrEmailTaken
		}
	}
	u := repository.User{ID: uuid.New(), Email: email, PasswordHash: hash, Roles: roles, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (m *memoryRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := m.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u := m.users[id]
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memoryRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, hash string, expiresAt time.Time) error {
	m.tokens[hash] = &storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memoryRepo) GetRefreshToken(_ context.Context, hash string) (uuid.UUID, time.Time, error) {
	t, ok := m.tokens[hash]
	if !ok || t.revoked {
		return uuid.UUID{}, time.Time{}, repository.ErrNotFound
	}
	return t.userID, t.expiresAt, nil
}

func (m *memoryRepo) RevokeRefreshToken(_ context.Context, hash string) error {
	if t, ok := m.tokens[hash]; ok {
		t.revoked = true
	}
	return nil
}

func (m *memoryRepo) RevokeAllRefreshTokens(_ context.Context, userID uuid.UUID) error {
	for _, t := range m.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := New(repo, testConfig{}, logger.NewNop())
	if _, err := svc.CreateAdmin(context.Background(), "ops@acme.com", "Consult1ng-Leads"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return svc, repo
}

func TestSignInIssuesAdminAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	access, refresh, err := svc.SignIn(context.Background(), "ops@acme.com", "Consult1ng-Leads")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if refresh == "" {
		t.Fatal("expected refresh token")
	}

	parsed, err := jwt.Parse(access, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("access token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "access" {
		t.Fatalf("type claim = %v", claims["type"])
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != RoleAdmin {
		t.Fatalf("roles claim = %v", claims["roles"])
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	if _, _, err := svc.SignIn(context.Background(), "ops@acme.com", "wrong"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "nobody@acme.com", "Consult1ng-Leads"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("unknown account: got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, refresh, err := svc.SignIn(context.Background(), "ops@acme.com", "Consult1ng-Leads")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	_, rotated, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated == refresh {
		t.Fatal("refresh token must rotate")
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("reuse of rotated token: got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, refresh, err := svc.SignIn(context.Background(), "ops@acme.com", "Consult1ng-Leads")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, _, err := svc.Refresh(context.Background(), refresh); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestSignOutRevokes(t *testing.T) {
	svc, _ := newTestService(t)
	_, refresh, _ := svc.SignIn(context.Background(), "ops@acme.com", "Consult1ng-Leads")

	if err := svc.SignOut(context.Background(), refresh); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); err == nil {
		t.Fatal("refresh after sign-out must fail")
	}
}

func TestCreateAdminConflict(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateAdmin(context.Background(), "ops@acme.com", "An0ther-Passw0rd"); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	svc, repo := newTestService(t)
	_, refresh, _ := svc.SignIn(context.Background(), "ops@acme.com", "Consult1ng-Leads")

	if err := svc.ResetPassword(context.Background(), "ops@acme.com", "N3w-Passw0rd!!"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	user, _ := repo.GetUserByEmail(context.Background(), "ops@acme.com")
	if err := password.Compare(user.PasswordHash, "N3w-Passw0rd!!"); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); err == nil {
		t.Fatal("old session must be revoked")
	}
}
