package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestCreateAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	exp := now.Add(time.Hour)
	tok, err := CreateAccessToken(RoleAdmin, "64b7f0c2a1b2c3d4e5f60718", now, exp, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	expired, err := CreateAccessToken(RoleUser, "u1", now.Add(-2*time.Hour), now.Add(-time.Hour), secret)
	require.NoError(t, err)

	wrongKey, err := CreateAccessToken(RoleUser, "u1", now, now.Add(time.Hour), []byte("other"))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := CreateAccessToken(RoleUser, "", now, now.Add(time.Hour), secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong key", token: wrongKey},
		{name: "none alg", token: noneAlg},
		{name: "garbage", token: "not.a.jwt"},
		{name: "no subject", token: noSubject},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := AccessClaimsFromToken(tt.token, secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
