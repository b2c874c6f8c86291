package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	"github.com/Shray90/YalaCarves-sub001/internal/service"
)

type AuthServiceMock struct {
	claims *service.Claims
	err    error
}

func (m AuthServiceMock) Register(_ context.Context, _, _, _ string) (*domain.User, error) {
	return nil, m.err
}

func (m AuthServiceMock) Login(_ context.Context, _, _ string) (string, *domain.User, error) {
	return "", nil, m.err
}

func (m AuthServiceMock) Profile(_ context.Context, _ int64) (*domain.User, error) {
	return nil, m.err
}

func (m AuthServiceMock) ParseToken(_ string) (*service.Claims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mw := AuthMiddleware(AuthServiceMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/me", nil)

	mw(okHandler()).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	mw := AuthMiddleware(AuthServiceMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/me", nil)
	request.Header.Set("Authorization", "Basic abc123")

	mw(okHandler()).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := AuthMiddleware(AuthServiceMock{err: errors.New("invalid token")})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/me", nil)
	request.Header.Set("Authorization", "Bearer bad-token")

	mw(okHandler()).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAuthMiddleware_AttachesClaims(t *testing.T) {
	claims := &service.Claims{UserID: 42, Email: "asha@example.com"}
	mw := AuthMiddleware(AuthServiceMock{claims: claims})

	var seen int64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getUserIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/me", nil)
	request.Header.Set("Authorization", "Bearer good-token")

	mw(inner).ServeHTTP(recorder, request)

	if seen != 42 {
		t.Errorf("expected user id 42 in context, got %d", seen)
	}
}

func TestAdminOnly_Forbidden(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("PUT", "/api/v1/admin/orders/x/status", nil))

	AdminOnly(okHandler()).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected %d, got %d", http.StatusForbidden, recorder.Code)
	}
}

func TestAdminOnly_Allowed(t *testing.T) {
	claims := &service.Claims{UserID: 1, IsAdmin: true}
	request := httptest.NewRequest("PUT", "/api/v1/admin/orders/x/status", nil)
	request = request.WithContext(context.WithValue(request.Context(), claimsContextKey, claims))

	recorder := httptest.NewRecorder()
	AdminOnly(okHandler()).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
}
