package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	jwt_internal "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/jwt"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

// Key to store the authenticated principal in the request context
type key int

const (
	userClaimsKey key = iota
	adminClaimsKey
)

var (
	errNoToken       = errors.New("no access token provided")
	errInvalidClaims = errors.New("invalid token claims")
)

// AccessGuard revalidates the token's principal against current account
// state. Claims alone are not enough: an account blocked after the token was
// issued must be rejected on its next request, not at expiry.
type AccessGuard interface {
	AuthorizeRequest(id domain.UserId, ip string) (domain.User, error)
}

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
	guard      AccessGuard
}

func NewAuth(jwtService jwt_internal.JwtService, guard AccessGuard) *Auth {
	return &Auth{jwtService: jwtService, guard: guard}
}

// NeedAuth returns middleware that requires a user token
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly returns middleware that requires an admin token
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractClaims(r)
			if err != nil {
				if errors.Is(err, errNoToken) {
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			isAdmin, _ := claims["admin"].(bool)
			username, _ := claims["username"].(string)

			if adminOnly {
				if !isAdmin {
					http.Error(w, "Access denied. Only for admin", http.StatusForbidden)
					return
				}
				ctx := context.WithValue(r.Context(), adminClaimsKey, &domain.AdminPrincipal{Username: username})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			uid, ok := claims["uid"].(float64)
			if !ok {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			ip, _ := utils.GetIP(r)
			user, err := a.guard.AuthorizeRequest(domain.UserId(int64(uid)), ip)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Auth) extractClaims(r *http.Request) (jwt.MapClaims, error) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}
	return claims, nil
}

// GetUserFromContext retrieves the authenticated user, or nil.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetAdminFromContext retrieves the authenticated admin principal, or nil.
func GetAdminFromContext(r *http.Request) *domain.AdminPrincipal {
	admin, ok := r.Context().Value(adminClaimsKey).(*domain.AdminPrincipal)
	if !ok {
		return nil
	}
	return admin
}
