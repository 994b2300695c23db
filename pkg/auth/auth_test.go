package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/auth"
	"alkoholove.dev/Alkoholove/pkg/model"
)

type blacklistStub struct {
	revoked map[string]time.Time
}

func (b *blacklistStub) BlacklistToken(_ context.Context, jti string, expirationDate time.Time) error {
	b.revoked[jti] = expirationDate

	return nil
}

func (b *blacklistStub) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	_, found := b.revoked[jti]

	return found, nil
}

func (b *blacklistStub) PurgeExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	var purged int64

	for jti, expires := range b.revoked {
		if expires.Before(now) {
			delete(b.revoked, jti)
			purged++
		}
	}

	return purged, nil
}

type AuthSuite struct {
	suite.Suite
	conf    *configs.Config
	tokens  *blacklistStub
	manager *auth.Manager
	user    *model.User
}

func (suite *AuthSuite) SetupTest() {
	suite.conf = &configs.Config{}
	suite.conf.Auth.SecretKey = "s3cret-signing-key"
	suite.conf.Auth.TokenTTLMinutes = 60

	suite.tokens = &blacklistStub{revoked: make(map[string]time.Time)}
	suite.manager = auth.NewAuthManager(suite.conf, suite.tokens, zap.NewNop())
	suite.user = &model.User{UUID: uuid.New(), Username: "alice", IsAdmin: true}
}

func (suite *AuthSuite) TestIssueAndValidate() {
	token, err := suite.manager.IssueToken(suite.user)
	suite.Require().NoError(err)
	suite.Require().NotEmpty(token)

	claims, err := suite.manager.ValidateToken(context.Background(), token)
	suite.Require().NoError(err)
	suite.Equal("alice", claims.Username)
	suite.True(claims.IsAdmin)
	suite.Equal(suite.user.UUID.String(), claims.Subject)
	suite.NotEmpty(claims.ID)
}

func (suite *AuthSuite) TestRevokedTokenIsRejected() {
	token, err := suite.manager.IssueToken(suite.user)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.manager.RevokeToken(context.Background(), token))

	_, err = suite.manager.ValidateToken(context.Background(), token)
	suite.Require().ErrorIs(err, auth.ErrTokenRevoked)

	// Revocation entries live only until the token would have expired.
	purged, err := suite.tokens.PurgeExpiredTokens(context.Background(), time.Now().Add(2*time.Hour))
	suite.Require().NoError(err)
	suite.Equal(int64(1), purged)
}

func (suite *AuthSuite) TestTamperedTokenIsRejected() {
	token, err := suite.manager.IssueToken(suite.user)
	suite.Require().NoError(err)

	_, err = suite.manager.ValidateToken(context.Background(), token+"x")
	suite.Require().ErrorIs(err, auth.ErrInvalidToken)
}

func (suite *AuthSuite) TestTokenSignedWithOtherKeyIsRejected() {
	otherConf := &configs.Config{}
	otherConf.Auth.SecretKey = "a-different-key"
	otherConf.Auth.TokenTTLMinutes = 60
	other := auth.NewAuthManager(otherConf, suite.tokens, zap.NewNop())

	token, err := other.IssueToken(suite.user)
	suite.Require().NoError(err)

	_, err = suite.manager.ValidateToken(context.Background(), token)
	suite.Require().ErrorIs(err, auth.ErrInvalidToken)
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}
