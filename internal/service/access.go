package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

// Deny reasons surfaced by the access gate.
const (
	DenyAccountBlocked     = "account_blocked"
	DenyAccountLocked      = "account_locked"
	DenyEntityBlocked      = "entity_blocked"
	DenyInvalidCredentials = "invalid_credentials"
)

// Decision is the outcome of one authorization pass. Matches carries the
// blocklist entries behind an entity_blocked denial.
type Decision struct {
	Allowed bool                `json:"allowed"`
	Reason  string              `json:"reason,omitempty"`
	Matches []domain.BlockMatch `json:"matches,omitempty"`
}

type AccessStorage interface {
	UserById(id domain.UserId) (domain.User, error)
	BlockMatches(probes []domain.BlockMatch) ([]domain.BlockMatch, error)
	RegisterFailedLogin(id domain.UserId, maxAttempts int, lockout time.Duration) (int, *time.Time, error)
	ResetLoginAttempts(id domain.UserId) error
}

// Access composes the blocklist, the lockout state and the credential check
// into a single ordered gate applied before login and before broadcast.
type Access struct {
	storage AccessStorage
	cfg     *config.Public
}

func NewAccess(storage AccessStorage, cfg *config.Public) *Access {
	return &Access{storage: storage, cfg: cfg}
}

// Authorize runs the gate for a login-shaped request. The checks run in a
// fixed order and the first denial wins:
//
//  1. account block flag
//  2. active lockout window (before any credential work)
//  3. blocklist match on username, email or IP
//  4. credential check, counting failures toward lockout
//
// user is nil when the attempted username resolves to no account; the
// blocklist and credential steps still run so unknown and known users are
// indistinguishable to the caller.
func (a *Access) Authorize(user *domain.User, attemptedUsername, ip string, credentialCheck func() error) (Decision, error) {
	if user != nil && user.IsBlocked {
		return Decision{Reason: DenyAccountBlocked},
			&errors.ErrorWithStatusCode{Message: "Account is blocked", StatusCode: http.StatusForbidden}
	}

	if user != nil && user.Locked(time.Now()) {
		return Decision{Reason: DenyAccountLocked},
			&errors.ErrorWithStatusCode{Message: "Account is temporarily locked. Try again later", StatusCode: http.StatusForbidden}
	}

	email := ""
	if user != nil {
		email = user.Email
	}
	if matches := a.blockMatches(identityProbes(attemptedUsername, email, ip)); len(matches) > 0 {
		return Decision{Reason: DenyEntityBlocked, Matches: matches},
			&errors.ErrorWithStatusCode{Message: deniedMessage(matches), StatusCode: http.StatusForbidden}
	}

	if credentialCheck != nil {
		if err := credentialCheck(); err != nil {
			if user != nil {
				a.registerFailure(user)
			}
			return Decision{Reason: DenyInvalidCredentials},
				&errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
		}
		if user != nil {
			if err := a.storage.ResetLoginAttempts(user.Id); err != nil {
				logger.Log.Error("failed to reset login attempts", "user_id", user.Id, "error", err.Error())
			}
		}
	}

	return Decision{Allowed: true}, nil
}

// AuthorizeRequest re-evaluates an authenticated principal against current
// account state. Token claims go stale the moment an admin blocks the
// account, so every request re-reads the user row and re-probes the
// blocklist instead of trusting the JWT. Returns the fresh user on success.
func (a *Access) AuthorizeRequest(id domain.UserId, ip string) (domain.User, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, &errors.ErrorWithStatusCode{Message: "Invalid token", StatusCode: http.StatusUnauthorized}
		}
		return domain.User{}, err
	}

	if user.IsBlocked {
		return domain.User{}, &errors.ErrorWithStatusCode{Message: "Account is blocked", StatusCode: http.StatusForbidden}
	}

	if matches := a.blockMatches(identityProbes(user.Username, user.Email, ip)); len(matches) > 0 {
		return domain.User{}, &errors.ErrorWithStatusCode{Message: deniedMessage(matches), StatusCode: http.StatusForbidden}
	}

	return user, nil
}

// AuthorizeBroadcast re-runs the identity checks right before money moves.
// The caller is already authenticated; this guards against the account or
// one of its identifiers being blocked mid-session.
func (a *Access) AuthorizeBroadcast(user domain.User, ip string) (Decision, error) {
	if user.IsBlocked {
		return Decision{Reason: DenyAccountBlocked},
			&errors.ErrorWithStatusCode{Message: "Account is blocked", StatusCode: http.StatusForbidden}
	}
	matches := a.blockMatches(identityProbes(user.Username, user.Email, ip))
	if len(matches) > 0 {
		return Decision{Reason: DenyEntityBlocked, Matches: matches},
			&errors.ErrorWithStatusCode{Message: deniedMessage(matches), StatusCode: http.StatusForbidden}
	}
	return Decision{Allowed: true}, nil
}

func identityProbes(username, email, ip string) []domain.BlockMatch {
	probes := []domain.BlockMatch{{Kind: domain.EntityIP, Value: ip}}
	if username != "" {
		probes = append(probes, domain.BlockMatch{Kind: domain.EntityUsername, Value: strings.ToLower(username)})
	}
	if email != "" {
		probes = append(probes, domain.BlockMatch{Kind: domain.EntityEmail, Value: strings.ToLower(email)})
	}
	return probes
}

// blockMatches probes the blocklist, failing open on storage errors: an
// unreachable blocklist must degrade to "not blocked" rather than a total
// outage. The failure is logged and nothing else.
func (a *Access) blockMatches(probes []domain.BlockMatch) []domain.BlockMatch {
	matches, err := a.storage.BlockMatches(probes)
	if err != nil {
		logger.Log.Error("blocklist lookup failed, failing open", "error", err.Error())
		return nil
	}
	return matches
}

func (a *Access) registerFailure(user *domain.User) {
	attempts, lockedUntil, err := a.storage.RegisterFailedLogin(user.Id, a.cfg.MaxLoginAttempts, a.cfg.LockoutDuration)
	if err != nil {
		logger.Log.Error("failed to register failed login", "user_id", user.Id, "error", err.Error())
		return
	}
	if lockedUntil != nil {
		logger.Log.Warn("account locked after repeated failures", "user_id", user.Id, "attempts", attempts, "locked_until", lockedUntil)
	}
}

func deniedMessage(matches []domain.BlockMatch) string {
	reasons := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Reason != "" {
			reasons = append(reasons, m.Reason)
		}
	}
	if len(reasons) == 0 {
		return "Access denied"
	}
	return "Access denied: " + strings.Join(reasons, "; ")
}
