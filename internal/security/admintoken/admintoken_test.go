package admintoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	iss, err := NewIssuer("s3cret", "multilogin", time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.Issue("alice", RoleAdmin)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	cl, err := iss.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", cl.Subject)
	require.True(t, cl.IsAdmin())
}

func TestVerify_Rejects(t *testing.T) {
	iss, err := NewIssuer("s3cret", "multilogin", time.Minute)
	require.NoError(t, err)

	other, _ := NewIssuer("different", "multilogin", time.Minute)
	tok, _, _ := other.Issue("mallory", RoleAdmin)
	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIss, _ := NewIssuer("s3cret", "someone-else", time.Minute)
	tok, _, _ = wrongIss.Issue("bob")
	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	// vencido
	past := time.Now().Add(-2 * time.Hour)
	old, _ := NewIssuer("s3cret", "multilogin", time.Minute)
	old.now = func() time.Time { return past }
	tok, _, _ = old.Issue("carol", RoleAdmin)
	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	// alg none
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "iss": "multilogin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("  ", "x", 0)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestClaims_NotAdmin(t *testing.T) {
	require.False(t, (&Claims{Roles: []string{"viewer"}}).IsAdmin())
}
