package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type Manager struct {
	conf   *configs.Config
	tokens repository.TokenRepository
	logger *zap.Logger
}

func NewAuthManager(conf *configs.Config, tokens repository.TokenRepository, logger *zap.Logger) *Manager {
	return &Manager{conf: conf, tokens: tokens, logger: logger}
}

// IssueToken mints an HMAC-signed token carrying a fresh jti so it can be
// individually revoked later.
func (a *Manager) IssueToken(user *model.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UUID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(a.conf.Auth.TokenTTLMinutes) * time.Minute)),
		},
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(a.conf.Auth.SecretKey))
}

// ValidateToken checks the signature, expiry and the jti blacklist.
func (a *Manager) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return nil, err
	}

	blacklisted, err := a.tokens.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}

	if blacklisted {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RevokeToken blacklists the token's jti until its natural expiry, after
// which the purge job drops the row.
func (a *Manager) RevokeToken(ctx context.Context, tokenString string) error {
	claims, err := a.parse(tokenString)
	if err != nil {
		return err
	}

	return a.tokens.BlacklistToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (a *Manager) parse(tokenString string) (*Claims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}

		return []byte(a.conf.Auth.SecretKey), nil
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		a.logger.Error("error parsing token", zap.Error(err))

		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	if !token.Valid || len(claims.ID) == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
