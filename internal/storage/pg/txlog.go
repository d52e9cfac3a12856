package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// =========================================================================
// Public Methods
// =========================================================================

// SaveTransactionLog inserts the pending row written before a broadcast
// attempt and returns its id for the later status update.
func (s *Storage) SaveTransactionLog(log domain.TransactionLog) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO transaction_logs(user_id, txid, raw_hex, amount, fee, status, error, ip_address)
		VALUES($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		log.UserId, log.Txid, log.RawHex, log.Amount, log.Fee, log.Status, log.Error, log.IP).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert transaction log: %w", err)
	}
	return id, nil
}

// UpdateTransactionLog records the outcome of a broadcast attempt.
func (s *Storage) UpdateTransactionLog(id int64, txid string, status domain.TxStatus, errMsg string) error {
	res, err := s.db.Exec(`
		UPDATE transaction_logs
		SET txid = NULLIF($2, ''), status = $3, error = $4, updated_at = NOW()
		WHERE id = $1`,
		id, txid, status, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update transaction log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Transaction log not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// TransactionLogs returns an account's broadcast history, newest first.
func (s *Storage) TransactionLogs(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, COALESCE(txid, ''), raw_hex, amount, fee, status, error, ip_address, created_at, updated_at
		FROM transaction_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}
	defer rows.Close()
	return scanTransactionLogs(rows)
}

// AllTransactionLogs returns broadcast logs across every account for the
// admin view, newest first.
func (s *Storage) AllTransactionLogs(limit, offset int) ([]domain.TransactionLog, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, COALESCE(txid, ''), raw_hex, amount, fee, status, error, ip_address, created_at, updated_at
		FROM transaction_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}
	defer rows.Close()
	return scanTransactionLogs(rows)
}

// TransactionLogByTxid resolves an account's log entry for a txid.
func (s *Storage) TransactionLogByTxid(userId domain.UserId, txid string) (domain.TransactionLog, error) {
	var log domain.TransactionLog
	err := s.db.QueryRow(`
		SELECT id, user_id, COALESCE(txid, ''), raw_hex, amount, fee, status, error, ip_address, created_at, updated_at
		FROM transaction_logs
		WHERE user_id = $1 AND txid = $2`, userId, txid).
		Scan(&log.Id, &log.UserId, &log.Txid, &log.RawHex, &log.Amount, &log.Fee, &log.Status, &log.Error, &log.IP, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TransactionLog{}, &internal_errors.ErrorWithStatusCode{Message: "Transaction not found", StatusCode: http.StatusNotFound}
		}
		return domain.TransactionLog{}, fmt.Errorf("failed to fetch transaction log: %w", err)
	}
	return log, nil
}

// =========================================================================
// Internal Methods
// =========================================================================

func scanTransactionLogs(rows *sql.Rows) ([]domain.TransactionLog, error) {
	var logs []domain.TransactionLog
	for rows.Next() {
		var log domain.TransactionLog
		if err := rows.Scan(&log.Id, &log.UserId, &log.Txid, &log.RawHex, &log.Amount, &log.Fee, &log.Status, &log.Error, &log.IP, &log.CreatedAt, &log.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
