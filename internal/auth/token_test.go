package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketflow/ticketflow/internal/domain"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, exp, err := tm.Issue("user-1", "dev@example.com", domain.RoleDeveloper)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, domain.RoleDeveloper, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.Issue("user-1", "dev@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	tm.ttl = -time.Minute // force an already-expired token

	token, _, err := tm.Issue("user-1", "dev@example.com", domain.RoleDeveloper)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestDefaultTTLIsSevenDays(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	assert.Equal(t, 7*24*time.Hour, tm.TTL())
}
