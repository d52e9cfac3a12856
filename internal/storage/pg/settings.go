package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
)

// =========================================================================
// Public Methods
// =========================================================================

// FeePolicy reads the singleton fee configuration row.
func (s *Storage) FeePolicy() (domain.FeePolicy, error) {
	var policy domain.FeePolicy
	err := s.db.QueryRow(`
		SELECT fee_type, fee_amount, fee_address, enabled, updated_at, updated_by
		FROM fee_settings WHERE id = 1`).
		Scan(&policy.Kind, &policy.Amount, &policy.Address, &policy.Enabled, &policy.UpdatedAt, &policy.UpdatedBy)
	if err != nil {
		return domain.FeePolicy{}, fmt.Errorf("failed to fetch fee policy: %w", err)
	}
	return policy, nil
}

// UpdateFeePolicy replaces the singleton fee configuration in one statement.
func (s *Storage) UpdateFeePolicy(policy domain.FeePolicy) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE fee_settings
			SET fee_type = $1, fee_amount = $2, fee_address = $3, enabled = $4, updated_at = NOW(), updated_by = $5
			WHERE id = 1`,
			policy.Kind, policy.Amount, policy.Address, policy.Enabled, policy.UpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to update fee policy: %w", err)
		}
		return nil
	})
}
