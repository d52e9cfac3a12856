package middleware

import (
	"errors"
	"net/http"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware/ratelimiter"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

func RateLimit(krl *ratelimiter.KeyedRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !krl.Allow(identity) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit applies a single shared bucket to every request.
func GlobalRateLimit(krl *ratelimiter.KeyedRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(krl, func(r *http.Request) (string, error) {
		return "global", nil
	})
}

func GetUsernameFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", errors.New("Can't get username")
	}
	return user.Username, nil
}

func GetIP(r *http.Request) (string, error) {
	return utils.GetIP(r)
}
