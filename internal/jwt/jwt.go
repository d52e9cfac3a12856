package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

type JwtService interface {
	NewToken(user domain.User) (string, error)
	NewAdminToken(username string) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{}
	claims["uid"] = user.Id
	claims["username"] = user.Username
	claims["admin"] = user.IsAdmin
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	return j.sign(claims)
}

// NewAdminToken issues a token for the env-configured admin principal, which
// has no user row behind it.
func (j *Jwt) NewAdminToken(username string) (string, error) {
	claims := jwt.MapClaims{}
	claims["username"] = username
	claims["admin"] = true
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	return j.sign(claims)
}

func (j *Jwt) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("can't sign token", "error", err.Error())
		return "", errors.New("can't create token")
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Token expired", StatusCode: http.StatusUnauthorized}
		}
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}
