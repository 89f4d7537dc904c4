package totp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "JBSWY3DPEHPK3PXP"

func TestValidateCurrentStep(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 0, 10, 0, time.UTC)
	code, err := Generate(secret, now)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	assert.True(t, Validate(code, secret, now))
}

func TestValidateAcceptsPreviousStep(t *testing.T) {
	issued := time.Date(2026, 3, 2, 14, 0, 29, 0, time.UTC)
	code, err := Generate(secret, issued)
	require.NoError(t, err)

	assert.True(t, Validate(code, secret, issued.Add(30*time.Second)), "um passo de atraso é aceito")
	assert.False(t, Validate(code, secret, issued.Add(60*time.Second)), "dois passos de atraso é rejeitado")
}

func TestValidateRejectsNextStep(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	future, err := Generate(secret, now.Add(Period))
	require.NoError(t, err)
	current, err := Generate(secret, now)
	require.NoError(t, err)

	if future != current {
		assert.False(t, Validate(future, secret, now))
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	now := time.Now()
	assert.False(t, Validate("", secret, now))
	assert.False(t, Validate("12345", secret, now))
	assert.False(t, Validate("1234567", secret, now))

	code, err := Generate(secret, now)
	require.NoError(t, err)
	assert.False(t, Validate(code, "", now))
}

func TestNewSecretRoundTrip(t *testing.T) {
	s, err := NewSecret("Loja Paulista")
	require.NoError(t, err)

	now := time.Now()
	code, err := Generate(s, now)
	require.NoError(t, err)
	assert.True(t, Validate(code, s, now))
}
