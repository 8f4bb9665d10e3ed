package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	m := NewManager("test-key", time.Hour)

	token, err := m.GenerateToken(42)
	req.NoError(err)

	claims, err := m.ValidateToken(token)
	req.NoError(err)
	req.EqualValues(42, claims.UserID)
}

func TestManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	req := require.New(t)

	other := NewManager("other-key", time.Hour)
	token, err := other.GenerateToken(1)
	req.NoError(err)

	_, err = NewManager("test-key", time.Hour).ValidateToken(token)
	req.ErrorIs(err, ErrInvalidToken)

	expired := NewManager("test-key", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = expired.GenerateToken(1)
	req.NoError(err)

	_, err = NewManager("test-key", time.Hour).ValidateToken(token)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.True(t, CheckPasswordHash("hunter22", hash))
	require.False(t, CheckPasswordHash("hunter23", hash))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	require.Equal(t, "q", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "c"})
	require.Equal(t, "c", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer h")
	require.Equal(t, "h", TokenFromRequest(r))
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFrom(context.Background())
	require.False(t, ok)

	id, ok := UserIDFrom(WithUserID(context.Background(), 7))
	require.True(t, ok)
	require.EqualValues(t, 7, id)
}
