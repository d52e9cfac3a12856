package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

type AdminService interface {
	Login(creds domain.LoginCreds) (string, error)
	Users(search string, limit, offset int) ([]domain.User, error)
	UserDetails(id domain.UserId) (domain.UserDetails, error)
	SetUserBlocked(id domain.UserId, blocked bool) error
	Dashboard() (domain.DashboardStats, error)
	TransactionLogs(limit, offset int) ([]domain.TransactionLog, error)
}

type AdminStorage interface {
	Users(search string, limit, offset int) ([]domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
	Wallets(userId domain.UserId) ([]domain.Wallet, error)
	UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error)
	SetUserBlocked(id domain.UserId, blocked bool) error
	DashboardStats() (domain.DashboardStats, error)
	AllTransactionLogs(limit, offset int) ([]domain.TransactionLog, error)
}

// Admin authenticates the moderation principal configured in the private
// config; it has no user row behind it.
type Admin struct {
	storage AdminStorage
	jwt     Jwt
	creds   config.Admin
}

func NewAdmin(storage AdminStorage, jwt Jwt, creds config.Admin) *Admin {
	return &Admin{storage: storage, jwt: jwt, creds: creds}
}

func (a *Admin) Login(creds domain.LoginCreds) (string, error) {
	if a.creds.Username == "" || a.creds.PasswordHash == "" {
		logger.Log.Error("admin credentials are not configured")
		return "", errors.Unauthorized("Invalid credentials")
	}
	if creds.Username != a.creds.Username {
		return "", errors.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.creds.PasswordHash), []byte(creds.Password)); err != nil {
		return "", errors.Unauthorized("Invalid credentials")
	}
	return a.jwt.NewAdminToken(creds.Username)
}

func (a *Admin) Users(search string, limit, offset int) ([]domain.User, error) {
	return a.storage.Users(search, clampLimit(limit), offset)
}

// UserDetails assembles the moderation view of one account: the row, its
// linked wallets, and its recent activity.
func (a *Admin) UserDetails(id domain.UserId) (domain.UserDetails, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		return domain.UserDetails{}, err
	}
	wallets, err := a.storage.Wallets(id)
	if err != nil {
		return domain.UserDetails{}, err
	}
	activity, err := a.storage.UserActivity(id, defaultPageSize)
	if err != nil {
		return domain.UserDetails{}, err
	}
	return domain.UserDetails{User: user, Wallets: wallets, Activity: activity}, nil
}

func (a *Admin) SetUserBlocked(id domain.UserId, blocked bool) error {
	return a.storage.SetUserBlocked(id, blocked)
}

func (a *Admin) Dashboard() (domain.DashboardStats, error) {
	return a.storage.DashboardStats()
}

func (a *Admin) TransactionLogs(limit, offset int) ([]domain.TransactionLog, error) {
	return a.storage.AllTransactionLogs(clampLimit(limit), offset)
}
