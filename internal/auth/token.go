// File: internal/auth/token.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// There are no user accounts. The client token only binds a browser to the
// state-mutating API: the chat page sets it as a cookie on first load and
// the /api subrouter refuses requests without a valid one.

// GenerateClientToken issues a signed token for a browser client.
func GenerateClientToken(clientID string, secretKey []byte) (string, error) {
	if clientID == "" {
		return "", errors.New("client ID cannot be empty")
	}

	claims := jwt.MapClaims{
		"sub": clientID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24 * 30).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateClientToken checks the signature and returns the client id.
func ValidateClientToken(tokenString string, secretKey []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if clientID, ok := claims["sub"].(string); ok && clientID != "" {
			return clientID, nil
		}
	}

	return "", errors.New("invalid token")
}
