package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/auth"
	"github.com/creditedge/backend/internal/config"
	"github.com/creditedge/backend/internal/db"
	"github.com/creditedge/backend/internal/http/handlers"
	"github.com/creditedge/backend/internal/server"
)

type fakeAuthRepo struct {
	users    map[string]*db.User
	sessions map[string]*db.Session
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]*db.User{}, sessions: map[string]*db.Session{}}
}

func (r *fakeAuthRepo) addUser(email, password, role string) *db.User {
	hash, _ := auth.HashPassword(password)
	u := &db.User{
		ID:           "u-" + email,
		TenantID:     "tenant-1",
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	r.users[email] = u
	return u
}

func (r *fakeAuthRepo) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, context.Canceled
}

func (r *fakeAuthRepo) GetUserByID(_ context.Context, userID string) (*db.User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, context.Canceled
}

func (r *fakeAuthRepo) CreateSession(_ context.Context, userID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error) {
	s := &db.Session{ID: "s-" + time.Now().UTC().Format("150405.000000"), UserID: userID, RefreshTokenHash: refreshHash, UserAgent: userAgent, IPAddress: ipAddress, ExpiresAt: expiresAt}
	r.sessions[s.ID] = s
	return s, nil
}

func (r *fakeAuthRepo) GetSessionByID(_ context.Context, sessionID string) (*db.Session, error) {
	if s, ok := r.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, context.Canceled
}

func (r *fakeAuthRepo) RevokeSession(_ context.Context, sessionID string) error {
	if s, ok := r.sessions[sessionID]; ok {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) UpdateSessionRefreshHash(_ context.Context, sessionID, refreshHash string) error {
	if s, ok := r.sessions[sessionID]; ok {
		s.RefreshTokenHash = refreshHash
	}
	return nil
}

func newAuthRouter(repo *fakeAuthRepo) *gin.Engine {
	jwtManager := auth.NewJWTManager("issuer", "aud", "super-secret")
	svc := auth.NewService(repo, jwtManager, 15*time.Minute, 24*time.Hour)
	h := handlers.NewAuthHandler(svc, auth.CookieConfig{}, 15*time.Minute, 24*time.Hour)
	return server.NewRouter(config.Config{Env: "test"}, slog.Default(), server.Dependencies{AuthHandler: h, JWTManager: jwtManager})
}

func TestAuthLoginSetsCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := newFakeAuthRepo()
	repo.addUser("officer@acme.test", "pass-word-1", auth.RoleLoanOfficer)
	r := newAuthRouter(repo)

	body, _ := json.Marshal(map[string]string{"email": "officer@acme.test", "password": "pass-word-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) < 2 {
		t.Fatalf("expected auth cookies to be set")
	}
}

func TestAuthLoginRejectsBadPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := newFakeAuthRepo()
	repo.addUser("officer@acme.test", "pass-word-1", auth.RoleLoanOfficer)
	r := newAuthRouter(repo)

	body, _ := json.Marshal(map[string]string{"email": "officer@acme.test", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthLoginRejectsDisabledUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := newFakeAuthRepo()
	u := repo.addUser("officer@acme.test", "pass-word-1", auth.RoleLoanOfficer)
	u.Active = false
	r := newAuthRouter(repo)

	body, _ := json.Marshal(map[string]string{"email": "officer@acme.test", "password": "pass-word-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
