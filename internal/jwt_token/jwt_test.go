package jwttoken

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
)

var wallet = id.MustAddress("0x" + strings.Repeat("1a", 20))

func newTestService() *Service {
	return NewService("test-signing-key", "chainpass", "chainpass-api")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(wallet, time.Minute)
	require.NoError(t, err)

	addr, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, addr)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(wallet, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := newTestService().GenerateAccessToken(wallet, time.Minute)
	require.NoError(t, err)

	other := NewService("different-key", "chainpass", "chainpass-api")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidate_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
