package logic

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	_, userDAO := newTestLedger(t)
	auth := NewAuthLogic(userDAO, "test-secret", 1)
	ctx := context.Background()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	userID := base58.Encode(pub)
	message := "login to sithtipahpreview"
	signature := base64.StdEncoding.EncodeToString(ed25519.Sign(priv, []byte(message)))

	user, token, expireAt, err := auth.Login(ctx, userID, message, signature)
	require.NoError(t, err)
	require.Equal(t, userID, user.UserID)
	require.False(t, expireAt.IsZero())

	// The token carries the user id and verifies against the secret
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, userID, claims["user_id"])

	// A second login reuses the existing row
	again, _, _, err := auth.Login(ctx, userID, message, signature)
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
}

func TestLoginBadSignature(t *testing.T) {
	_, userDAO := newTestLedger(t)
	auth := NewAuthLogic(userDAO, "test-secret", 1)
	ctx := context.Background()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	userID := base58.Encode(pub)
	bogus := base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize))

	_, _, _, err = auth.Login(ctx, userID, "message", bogus)
	require.Error(t, err)
}
