package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sftgate/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService("test-signing-key-at-least-32-chars!", "https://sftgate.test", "sftgate-api", time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("sp-1", []string{RoleOrgUser})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sp-1", claims.Subject)
	assert.True(t, claims.HasRole(RoleOrgUser))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_EmptySubject(t *testing.T) {
	_, err := newTestService().GenerateToken("", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateToken_WrongKey(t *testing.T) {
	token, err := newTestService().GenerateToken("sp-1", nil)
	require.NoError(t, err)

	other := NewService("a-completely-different-signing-key!!", "https://sftgate.test", "sftgate-api", time.Hour)
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("test-signing-key-at-least-32-chars!", "https://sftgate.test", "sftgate-api", -time.Minute)
	token, err := svc.GenerateToken("sp-1", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongAudience(t *testing.T) {
	issuer := NewService("test-signing-key-at-least-32-chars!", "https://sftgate.test", "other-api", time.Hour)
	token, err := issuer.GenerateToken("sp-1", nil)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.jwt")
	require.Error(t, err)
}
