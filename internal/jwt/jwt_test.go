package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	userID := uuid.New()
	ctx := context.Background()

	token, err := j.Generate(ctx, userID, "alice@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Valid token should pass validation
	err = j.Validate(ctx, token)
	assert.NoError(t, err)

	// Extract claims
	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(-time.Minute)) // already expired

	userID := uuid.New()
	ctx := context.Background()

	token, err := j.Generate(ctx, userID, "alice@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validation should fail
	err = j.Validate(ctx, token)
	assert.Error(t, err)

	claims, err := j.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	// Totally invalid string
	err := j.Validate(ctx, "invalid.token.string")
	assert.Error(t, err)

	claims, err := j.GetClaims(ctx, "invalid.token.string")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_Validate_WrongSecret(t *testing.T) {
	// A token of one class must never validate against another class's secret,
	// even when structurally valid.
	access := New(WithSecretKey("access-secret"), WithExpiration(time.Minute))
	refresh := New(WithSecretKey("refresh-secret"), WithExpiration(time.Hour))
	ctx := context.Background()

	userID := uuid.New()
	accessToken, err := access.Generate(ctx, userID, "alice@example.com")
	assert.NoError(t, err)

	err = refresh.Validate(ctx, accessToken)
	assert.Error(t, err)

	refreshToken, err := refresh.Generate(ctx, userID, "alice@example.com")
	assert.NoError(t, err)

	err = access.Validate(ctx, refreshToken)
	assert.Error(t, err)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New(WithCookieName("access_token"))
	ctx := context.Background()

	tests := []struct {
		name          string
		cookie        *http.Cookie
		expectedToken string
		expectError   bool
	}{
		{"ValidCookie", &http.Cookie{Name: "access_token", Value: "mytoken123"}, "mytoken123", false},
		{"NoCookie", nil, "", true},
		{"EmptyCookie", &http.Cookie{Name: "access_token", Value: ""}, "", true},
		{"WrongCookieName", &http.Cookie{Name: "refresh_token", Value: "mytoken123"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}

func TestJWT_SetTokenToResponse(t *testing.T) {
	j := New(WithCookieName("access_token"), WithExpiration(time.Minute))

	rec := httptest.NewRecorder()
	j.SetTokenToResponse(rec, "mytoken123")

	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, "mytoken123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}
