package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/streamhub/streamhub/auth"
)

type staticIdentity struct {
	id       string
	username string
	email    string
}

func (s staticIdentity) ID() string       { return s.id }
func (s staticIdentity) Username() string { return s.username }
func (s staticIdentity) Email() string    { return s.email }

func testIdentity() staticIdentity {
	return staticIdentity{
		id:       uuid.New().String(),
		username: "tester",
		email:    "tester@example.com",
	}
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := auth.NewTokenService(testTokenConfig{}, nil)
	identity := testIdentity()

	t.Run("access token round trip", func(t *testing.T) {
		token, err := svc.IssueAccess(identity)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.ValidateAccess(token)
		assert.NoError(t, err)
		assert.Equal(t, identity.ID(), claims.UserID())
		assert.Equal(t, auth.TokenKindAccess, claims.Kind)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		token, err := svc.IssueRefresh(identity)
		assert.NoError(t, err)

		claims, err := svc.ValidateRefresh(token)
		assert.NoError(t, err)
		assert.Equal(t, identity.ID(), claims.UserID())
		assert.Equal(t, auth.TokenKindRefresh, claims.Kind)
	})

	t.Run("pair carries both kinds", func(t *testing.T) {
		pair, err := svc.IssuePair(identity)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	})
}

func TestTokenServiceRejectsCrossKind(t *testing.T) {
	svc := auth.NewTokenService(testTokenConfig{}, nil)
	identity := testIdentity()

	access, err := svc.IssueAccess(identity)
	assert.NoError(t, err)

	refresh, err := svc.IssueRefresh(identity)
	assert.NoError(t, err)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefresh(access)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccess(refresh)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})
}

func TestTokenServiceExpiry(t *testing.T) {
	svc := auth.NewTokenService(testTokenConfig{accessTTL: -time.Minute}, nil)
	identity := testIdentity()

	token, err := svc.IssueAccess(identity)
	assert.NoError(t, err)

	_, err = svc.ValidateAccess(token)
	assert.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenServiceRejectsForeignSignature(t *testing.T) {
	issuer := auth.NewTokenService(testTokenConfig{}, nil)

	other := auth.NewTokenService(otherSecretConfig{}, nil)

	token, err := issuer.IssueAccess(testIdentity())
	assert.NoError(t, err)

	_, err = other.ValidateAccess(token)
	assert.Error(t, err)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := auth.NewTokenService(testTokenConfig{}, nil)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ValidateAccess(raw)
		assert.Error(t, err)
	}
}

type otherSecretConfig struct{}

func (otherSecretConfig) GetAccessTokenSecret() string      { return "an-entirely-different-secret" }
func (otherSecretConfig) GetRefreshTokenSecret() string     { return "another-different-secret" }
func (otherSecretConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (otherSecretConfig) GetRefreshTokenTTL() time.Duration { return 240 * time.Hour }
func (otherSecretConfig) GetIssuer() string                 { return "test-issuer" }
