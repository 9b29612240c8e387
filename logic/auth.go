package logic

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/mr-tron/base58"

	"github.com/cassieopeanuts/sithtipahpreview/dao"
	"github.com/cassieopeanuts/sithtipahpreview/models"
)

// AuthLogic handles operator-API authentication: a member proves control of
// their keypair by signing a message, and gets a short-lived JWT back.
type AuthLogic struct {
	userDAO *dao.UserDAO
	secret  string
	expHour int
}

func NewAuthLogic(userDAO *dao.UserDAO, secret string, expHour int) *AuthLogic {
	return &AuthLogic{userDAO: userDAO, secret: secret, expHour: expHour}
}

func (l *AuthLogic) verifySignature(publicKey, message, signature string) (bool, error) {
	pubKeyBytes, err := base58.Decode(publicKey)
	if err != nil {
		return false, err
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("ed25519: bad public key length: %d", len(pubKeyBytes))
	}

	sigBytes, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, err
	}

	return ed25519.Verify(pubKeyBytes, []byte(message), sigBytes), nil
}

func (l *AuthLogic) generateJWT(userID string) (string, time.Time, error) {
	expireAt := time.Now().Add(time.Duration(l.expHour) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expireAt.Unix(),
	})
	tokenString, err := token.SignedString([]byte(l.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expireAt, nil
}

// Login verifies the signature and returns the user row plus a JWT. A member
// who has never touched the ledger gets an empty row created, same as a tip
// recipient would.
func (l *AuthLogic) Login(ctx context.Context, userID, message, signature string) (*models.User, string, time.Time, error) {
	isValid, err := l.verifySignature(userID, message, signature)
	if err != nil || !isValid {
		return nil, "", time.Time{}, errors.New("invalid signature")
	}

	user, err := l.userDAO.GetUser(ctx, userID)
	if errors.Is(err, dao.ErrUserNotFound) {
		user, err = l.userDAO.CreateUser(ctx, userID, "", 0)
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expireAt, err := l.generateJWT(user.UserID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expireAt, nil
}
