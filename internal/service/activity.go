package service

import (
	"time"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

type ActivityService interface {
	Record(record domain.ActivityRecord)
	SuspiciousIPs(limit, offset int) ([]domain.SuspiciousIP, error)
	SuspiciousUsers(limit, offset int) ([]domain.SuspiciousUser, error)
	UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error)
	IPActivity(ip string, limit int) ([]domain.ActivityRecord, error)
}

type ActivityStorage interface {
	RecordActivity(record domain.ActivityRecord) error
	SuspiciousIPs(minUsers int, lookback time.Duration, limit, offset int) ([]domain.SuspiciousIP, error)
	SuspiciousUsers(minIPs int, lookback time.Duration, limit, offset int) ([]domain.SuspiciousUser, error)
	UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error)
	IPActivity(ip string, limit int) ([]domain.ActivityRecord, error)
}

// Activity is the ledger write path plus the read-side suspicious-activity
// detector. The detector is advisory: it surfaces candidates for a human
// moderator and never blocks anything itself.
type Activity struct {
	storage ActivityStorage
	cfg     *config.Public
}

func NewActivity(storage ActivityStorage, cfg *config.Public) *Activity {
	return &Activity{storage: storage, cfg: cfg}
}

// Record appends to the ledger. Failures are logged and swallowed: the
// request that produced the activity must never fail because of bookkeeping.
func (a *Activity) Record(record domain.ActivityRecord) {
	if err := a.storage.RecordActivity(record); err != nil {
		logger.Log.Error("failed to record activity", "action", record.Action, "error", err.Error())
	}
}

func (a *Activity) SuspiciousIPs(limit, offset int) ([]domain.SuspiciousIP, error) {
	return a.storage.SuspiciousIPs(a.cfg.SuspiciousUsersPerIP, a.cfg.ActivityLookback, clampLimit(limit), offset)
}

func (a *Activity) SuspiciousUsers(limit, offset int) ([]domain.SuspiciousUser, error) {
	return a.storage.SuspiciousUsers(a.cfg.SuspiciousIPsPerUser, a.cfg.ActivityLookback, clampLimit(limit), offset)
}

func (a *Activity) UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error) {
	return a.storage.UserActivity(userId, clampLimit(limit))
}

func (a *Activity) IPActivity(ip string, limit int) ([]domain.ActivityRecord, error) {
	return a.storage.IPActivity(ip, clampLimit(limit))
}
