// Package auth issues and checks the bearer tokens that guard the audit API.
package auth

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/punchaudit/punchaudit-backend/pkg/config"
	"github.com/punchaudit/punchaudit-backend/pkg/errors"
	"github.com/punchaudit/punchaudit-backend/pkg/httputil"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// Manager handles JWT operations
type Manager struct {
	config *config.AuthConfig
	now    func() time.Time
}

// NewManager creates a new JWT manager
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{config: cfg, now: time.Now}
}

// Token is a freshly minted bearer token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// Issue signs an HS256 token for subject. A zero ttl uses the configured default.
func (m *Manager) Issue(subject string, ttl time.Duration) (*Token, error) {
	if ttl <= 0 {
		ttl = m.config.TokenTTL
	}
	now := m.now()
	expiry := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		ExpiresAt:   expiry,
		TokenType:   "Bearer",
	}, nil
}

// Validate parses a token and returns its claims
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	},
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return claims, nil
}

// Middleware rejects requests without a valid bearer token and records the subject on the context.
func (m *Manager) Middleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := m.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Str("request_id", httputil.GetRequestID(r.Context())).Msg("token validation failed")
				httputil.Error(w, err)
				return
			}

			ctx := httputil.WithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
