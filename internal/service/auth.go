package service

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

type AuthService interface {
	Register(creds domain.UserCreds, ip string) (domain.User, string, error)
	Login(creds domain.LoginCreds, ip string) (domain.User, string, error)
	Refresh(id domain.UserId) (string, error)
	Profile(id domain.UserId) (domain.User, error)
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	User(username string) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
	NewAdminToken(username string) (string, error)
}

// BlocklistChecker screens registration identity against the blocklist.
type BlocklistChecker interface {
	FindBlockingReasons(username, email, ip string) ([]domain.BlockMatch, error)
}

type Auth struct {
	storage   AuthStorage
	access    *Access
	blocklist BlocklistChecker
	jwt       Jwt
	cfg       *config.Public
}

func NewAuth(storage AuthStorage, access *Access, blocklist BlocklistChecker, jwt Jwt, cfg *config.Public) *Auth {
	return &Auth{storage: storage, access: access, blocklist: blocklist, jwt: jwt, cfg: cfg}
}

// Register creates an account and returns it with a freshly issued token.
// Blocklisted usernames, emails and IPs are refused up front; a failed
// blocklist lookup is logged and registration proceeds.
func (a *Auth) Register(creds domain.UserCreds, ip string) (domain.User, string, error) {
	username := strings.ToLower(creds.Username)
	email := strings.ToLower(creds.Email)

	matches, err := a.blocklist.FindBlockingReasons(username, email, ip)
	if err != nil {
		logger.Log.Error("blocklist lookup failed, allowing registration", "error", err.Error())
	} else if len(matches) > 0 {
		return domain.User{}, "", errors.Forbidden(deniedMessage(matches))
	}

	cost := a.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), cost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err.Error())
		return domain.User{}, "", err
	}

	user := domain.User{Username: username, Email: email, PasswordHash: string(passHash)}
	id, err := a.storage.SaveUser(user)
	if err != nil {
		return domain.User{}, "", err
	}
	user.Id = id

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Login authenticates a user and returns a token. The access gate runs first
// with the lockout check ahead of any credential verification, so a locked
// account is denied even when the password is correct.
func (a *Auth) Login(creds domain.LoginCreds, ip string) (domain.User, string, error) {
	username := strings.ToLower(creds.Username)

	user, err := a.storage.User(username)
	if err != nil {
		if !errors.IsNotFound(err) {
			return domain.User{}, "", err
		}
		// Unknown account: run the gate anyway so the response is
		// indistinguishable from a wrong password.
		_, denyErr := a.access.Authorize(nil, username, ip, func() error {
			return errors.Unauthorized("Invalid credentials")
		})
		return domain.User{}, "", denyErr
	}

	_, err = a.access.Authorize(&user, username, ip, func() error {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password))
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Refresh reissues a token for a live session. The account is re-read so a
// user blocked after login cannot extend their session.
func (a *Auth) Refresh(id domain.UserId) (string, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.Unauthorized("Invalid token")
		}
		return "", err
	}
	if user.IsBlocked {
		return "", errors.Forbidden("Account is blocked")
	}
	return a.jwt.NewToken(user)
}

func (a *Auth) Profile(id domain.UserId) (domain.User, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, &errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, err
	}
	return user, nil
}
