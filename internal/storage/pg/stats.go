package pg

import (
	"fmt"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
)

// DashboardStats collects the counters for the admin dashboard in one query.
func (s *Storage) DashboardStats() (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE last_login > NOW() - INTERVAL '24 hours'),
			(SELECT COUNT(*) FROM users WHERE is_blocked),
			(SELECT COUNT(*) FROM users WHERE locked_until > NOW()),
			(SELECT COUNT(*) FROM wallets WHERE is_active),
			(SELECT COUNT(*) FROM transaction_logs),
			(SELECT COUNT(*) FROM transaction_logs WHERE created_at > NOW() - INTERVAL '24 hours')`).
		Scan(&stats.Users, &stats.ActiveUsers, &stats.BlockedUsers, &stats.LockedUsers, &stats.Wallets, &stats.Transactions, &stats.Transactions24h)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}
