package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstore/internal/apperror"
	"bookstore/internal/platform/crypto"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type resolverFunc func(ctx context.Context, userID string) (Identity, error)

func (f resolverFunc) ResolveIdentity(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveIdentity(ctx context.Context, userID string) (Identity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Identity), args.Error(1)
}

func knownUser(ctx context.Context, userID string) (Identity, error) {
	return Identity{ID: userID, Email: "reader@example.com"}, nil
}

func TestAuthMiddleware(t *testing.T) {
	valid, err := crypto.GenerateToken(testSecret, "u1", "reader@example.com", time.Hour)
	require.NoError(t, err)
	otherKey, err := crypto.GenerateToken("another-secret-of-enough-length", "u1", "reader@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, crypto.Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		resolver    resolverFunc
		wantStatus  int
		wantMessage string
	}{
		{"no header", "", knownUser, http.StatusUnauthorized, "Not authorized to access this route"},
		{"wrong scheme", "Basic " + valid, knownUser, http.StatusUnauthorized, "Not authorized to access this route"},
		{"lowercase scheme", "bearer " + valid, knownUser, http.StatusUnauthorized, "Not authorized to access this route"},
		{"empty token", "Bearer ", knownUser, http.StatusUnauthorized, "Not authorized to access this route"},
		{"garbage token", "Bearer not.a.jwt", knownUser, http.StatusUnauthorized, "Invalid token"},
		{"foreign signature", "Bearer " + otherKey, knownUser, http.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + expired, knownUser, http.StatusUnauthorized, "Token expired"},
		{
			"user gone",
			"Bearer " + valid,
			func(context.Context, string) (Identity, error) {
				return Identity{}, apperror.New(http.StatusUnauthorized, "User no longer exists")
			},
			http.StatusUnauthorized,
			"User no longer exists",
		},
		{
			"store down",
			"Bearer " + valid,
			func(context.Context, string) (Identity, error) { return Identity{}, errors.New("dial tcp") },
			http.StatusInternalServerError,
			"Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret, tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+tt.wantMessage+`"}`, w.Body.String())
		})
	}
}

func TestAuthMiddleware_AttachesIdentity(t *testing.T) {
	token, err := crypto.GenerateToken(testSecret, "u1", "reader@example.com", time.Hour)
	require.NoError(t, err)

	var got Identity
	handler := AuthMiddleware(testSecret, resolverFunc(knownUser))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = IdentityFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, "u1", UserIDFrom(r))
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, Identity{ID: "u1", Email: "reader@example.com"}, got)
}

func TestAuthMiddleware_ResolvesTokenSubject(t *testing.T) {
	token, err := crypto.GenerateToken(testSecret, "u42", "reader@example.com", time.Hour)
	require.NoError(t, err)

	resolver := new(mockResolver)
	resolver.On("ResolveIdentity", mock.Anything, "u42").
		Return(Identity{ID: "u42", Email: "current@example.com"}, nil).Once()

	var got Identity
	handler := AuthMiddleware(testSecret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	resolver.AssertExpectations(t)
	assert.Equal(t, "current@example.com", got.Email)
}

func TestAuthMiddleware_SkipsResolverForBadToken(t *testing.T) {
	resolver := new(mockResolver)
	handler := AuthMiddleware(testSecret, resolver)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resolver.AssertNotCalled(t, "ResolveIdentity", mock.Anything, mock.Anything)
}
