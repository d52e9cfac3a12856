package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// =========================================================================
// Public Methods
// =========================================================================

// SaveWallet links an address to an account, enforcing the per-user wallet
// cap inside the transaction so concurrent links cannot exceed it. An address
// is globally unique: relinking one the same user previously unlinked
// reactivates the existing row, while an address held by another account is
// refused.
func (s *Storage) SaveWallet(wallet domain.Wallet, maxPerUser int) (domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var saved domain.Wallet
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// Lock the owner row so concurrent links serialize on the cap check.
		var ownerId domain.UserId
		if err := tx.QueryRow("SELECT id FROM users WHERE id = $1 FOR UPDATE", wallet.UserId).Scan(&ownerId); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
			}
			return fmt.Errorf("failed to lock user row: %w", err)
		}

		var existingId int64
		var existingOwner domain.UserId
		var active bool
		err := tx.QueryRow("SELECT id, user_id, is_active FROM wallets WHERE address = $1", wallet.Address).
			Scan(&existingId, &existingOwner, &active)
		switch {
		case err == nil:
			if existingOwner != wallet.UserId {
				return &internal_errors.ErrorWithStatusCode{Message: "Wallet already linked to another account", StatusCode: http.StatusConflict}
			}
			if active {
				return &internal_errors.ErrorWithStatusCode{Message: "Wallet already linked", StatusCode: http.StatusConflict}
			}
			if err := s.checkWalletCap(tx, wallet.UserId, maxPerUser); err != nil {
				return err
			}
			var reactivated domain.Wallet
			if err := tx.QueryRow(`
				UPDATE wallets SET is_active = TRUE, label = $2
				WHERE id = $1
				RETURNING id, user_id, address, label, created_at`,
				existingId, wallet.Label).
				Scan(&reactivated.Id, &reactivated.UserId, &reactivated.Address, &reactivated.Label, &reactivated.CreatedAt); err != nil {
				return fmt.Errorf("failed to reactivate wallet: %w", err)
			}
			saved = reactivated
			return nil
		case errors.Is(err, sql.ErrNoRows):
			if err := s.checkWalletCap(tx, wallet.UserId, maxPerUser); err != nil {
				return err
			}
			saved, err = s.saveWallet(tx, wallet)
			return err
		default:
			return fmt.Errorf("failed to look up wallet address: %w", err)
		}
	})
	return saved, err
}

// DeactivateWallet unlinks an address without deleting the row, so the
// transaction history it anchors survives and the same user can relink later.
func (s *Storage) DeactivateWallet(userId domain.UserId, address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE wallets SET is_active = FALSE WHERE user_id = $1 AND address = $2 AND is_active",
			userId, address)
		if err != nil {
			return fmt.Errorf("failed to deactivate wallet: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Wallet not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

// UpdateWalletLabel renames a linked wallet.
func (s *Storage) UpdateWalletLabel(userId domain.UserId, address, label string) error {
	res, err := s.db.Exec("UPDATE wallets SET label = $3 WHERE user_id = $1 AND address = $2 AND is_active",
		userId, address, label)
	if err != nil {
		return fmt.Errorf("failed to update wallet label: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Wallet not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) Wallets(userId domain.UserId) ([]domain.Wallet, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, address, label, created_at
		FROM wallets
		WHERE user_id = $1 AND is_active
		ORDER BY created_at ASC`, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.Id, &w.UserId, &w.Address, &w.Label, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// OwnsWallet reports whether the account currently has the address linked.
func (s *Storage) OwnsWallet(userId domain.UserId, address string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1 AND address = $2 AND is_active)",
		userId, address).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet ownership: %w", err)
	}
	return exists, nil
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) checkWalletCap(q Querier, userId domain.UserId, maxPerUser int) error {
	var count int
	if err := q.QueryRow("SELECT COUNT(*) FROM wallets WHERE user_id = $1 AND is_active", userId).Scan(&count); err != nil {
		return fmt.Errorf("failed to count wallets: %w", err)
	}
	if count >= maxPerUser {
		return &internal_errors.ErrorWithStatusCode{Message: "Wallet limit reached", StatusCode: http.StatusConflict}
	}
	return nil
}

func (s *Storage) saveWallet(q Querier, wallet domain.Wallet) (domain.Wallet, error) {
	err := q.QueryRow(`
		INSERT INTO wallets(user_id, address, label)
		VALUES($1, $2, $3)
		RETURNING id, created_at`,
		wallet.UserId, wallet.Address, wallet.Label).Scan(&wallet.Id, &wallet.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Wallet{}, &internal_errors.ErrorWithStatusCode{Message: "Wallet already linked", StatusCode: http.StatusConflict}
		}
		return domain.Wallet{}, fmt.Errorf("failed to insert wallet: %w", err)
	}
	return wallet, nil
}
