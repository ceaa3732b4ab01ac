package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token parameters; overridden per token class via options.
const (
	defaultCookieName = "access_token"
	defaultExpiration = 15 * time.Minute
)

// Claims are the claims carried by both token classes: the user id as
// subject plus the email. Access and refresh tokens share this shape but
// are signed with different secrets and lifetimes.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// JWT signs and verifies tokens of a single class (one secret, one
// lifetime, one transport cookie). Instantiate it twice for the access and
// refresh classes; a token of one class never validates against the other.
type JWT struct {
	secretKey  string
	exp        time.Duration
	cookieName string
}

// Opt configures a JWT instance.
type Opt func(*JWT)

// WithSecretKey sets the signing secret.
func WithSecretKey(secretKey string) Opt {
	return func(j *JWT) { j.secretKey = secretKey }
}

// WithExpiration sets the token lifetime.
func WithExpiration(exp time.Duration) Opt {
	return func(j *JWT) { j.exp = exp }
}

// WithCookieName sets the cookie the token travels in.
func WithCookieName(name string) Opt {
	return func(j *JWT) { j.cookieName = name }
}

// New creates a JWT codec.
func New(opts ...Opt) *JWT {
	j := &JWT{
		cookieName: defaultCookieName,
		exp:        defaultExpiration,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Generate signs a token carrying the user id and email.
func (j *JWT) Generate(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.exp)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// GetClaims parses and verifies the token string against this class's
// secret and returns its claims. Signing-library errors surface as plain
// verification failures.
func (j *JWT) GetClaims(ctx context.Context, tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid subject format")
	}
	claims.UserID = userID

	return &claims, nil
}

// Validate checks that the token verifies against this class's secret.
func (j *JWT) Validate(ctx context.Context, tokenString string) error {
	_, err := j.GetClaims(ctx, tokenString)
	return err
}

// GetTokenFromRequest extracts the token string from this class's cookie.
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	cookie, err := r.Cookie(j.cookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.New("token cookie missing")
	}
	return cookie.Value, nil
}

// SetTokenToResponse delivers the token to the client as this class's
// cookie. Tokens are never carried in response bodies.
func (j *JWT) SetTokenToResponse(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.cookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(j.exp.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
