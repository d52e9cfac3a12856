package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

// =========================================================================
// Public Methods
// =========================================================================

// RecordActivity appends one row to the activity ledger. Callers treat
// failures here as non-fatal; the request that produced the activity must
// not fail because bookkeeping did.
func (s *Storage) RecordActivity(record domain.ActivityRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO ip_tracking(user_id, username, ip_address, action, user_agent)
		VALUES($1, $2, $3, $4, $5)`,
		record.UserId, record.Username, record.IP, record.Action, record.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// SuspiciousIPs returns addresses seen across at least minUsers distinct
// authenticated accounts inside the lookback window, most shared first.
func (s *Storage) SuspiciousIPs(minUsers int, lookback time.Duration, limit, offset int) ([]domain.SuspiciousIP, error) {
	rows, err := s.db.Query(`
		SELECT ip_address, COUNT(DISTINCT user_id) AS unique_users, COUNT(*) AS events, MAX(created_at) AS last_activity
		FROM ip_tracking
		WHERE user_id IS NOT NULL
		  AND created_at > NOW() - $2 * INTERVAL '1 second'
		GROUP BY ip_address
		HAVING COUNT(DISTINCT user_id) >= $1
		ORDER BY unique_users DESC, last_activity DESC
		LIMIT $3 OFFSET $4`,
		minUsers, int64(lookback.Seconds()), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query suspicious ips: %w", err)
	}
	defer rows.Close()

	var result []domain.SuspiciousIP
	for rows.Next() {
		var ip domain.SuspiciousIP
		if err := rows.Scan(&ip.IP, &ip.UniqueUsers, &ip.Events, &ip.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan suspicious ip: %w", err)
		}
		result = append(result, ip)
	}
	return result, rows.Err()
}

// SuspiciousUsers returns accounts seen from at least minIPs distinct
// addresses inside the lookback window, most spread first.
func (s *Storage) SuspiciousUsers(minIPs int, lookback time.Duration, limit, offset int) ([]domain.SuspiciousUser, error) {
	rows, err := s.db.Query(`
		SELECT t.user_id, u.username, COUNT(DISTINCT t.ip_address) AS unique_ips, COUNT(*) AS events, MAX(t.created_at) AS last_activity
		FROM ip_tracking t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id IS NOT NULL
		  AND t.created_at > NOW() - $2 * INTERVAL '1 second'
		GROUP BY t.user_id, u.username
		HAVING COUNT(DISTINCT t.ip_address) >= $1
		ORDER BY unique_ips DESC, last_activity DESC
		LIMIT $3 OFFSET $4`,
		minIPs, int64(lookback.Seconds()), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query suspicious users: %w", err)
	}
	defer rows.Close()

	var result []domain.SuspiciousUser
	for rows.Next() {
		var u domain.SuspiciousUser
		if err := rows.Scan(&u.UserId, &u.Username, &u.UniqueIPs, &u.Events, &u.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan suspicious user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// UserActivity returns recent ledger rows for one account, newest first.
func (s *Storage) UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error) {
	return s.activity(`WHERE user_id = $1`, userId, limit)
}

// IPActivity returns recent ledger rows for one address, newest first.
func (s *Storage) IPActivity(ip string, limit int) ([]domain.ActivityRecord, error) {
	return s.activity(`WHERE ip_address = $1`, ip, limit)
}

// DeleteActivityBefore purges ledger rows older than the cutoff and returns
// the number removed.
func (s *Storage) DeleteActivityBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM ip_tracking WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge activity: %w", err)
	}
	return res.RowsAffected()
}

// StartPeriodicActivitySweep purges expired ledger rows on a fixed interval
// until the context is cancelled.
func (s *Storage) StartPeriodicActivitySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().Add(-s.cfg.Public.ActivityRetention)
				removed, err := s.DeleteActivityBefore(cutoff)
				if err != nil {
					logger.Log.Error("activity sweep failed", "error", err.Error())
					continue
				}
				if removed > 0 {
					logger.Log.Info("activity sweep", "removed", removed)
				}
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) activity(where string, key any, limit int) ([]domain.ActivityRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, username, ip_address, action, user_agent, created_at
		FROM ip_tracking
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, where)

	rows, err := s.db.Query(query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		var r domain.ActivityRecord
		if err := rows.Scan(&r.Id, &r.UserId, &r.Username, &r.IP, &r.Action, &r.UserAgent, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
