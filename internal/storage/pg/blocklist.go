package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// =========================================================================
// Public Methods
// =========================================================================

// BlockEntity inserts a blocklist entry. Duplicate (type, value) pairs are
// rejected by the unique constraint and surfaced as a conflict.
func (s *Storage) BlockEntity(entity domain.BlockedEntity) (domain.BlockedEntity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var saved domain.BlockedEntity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = s.blockEntity(tx, entity)
		return err
	})
	return saved, err
}

// UnblockEntity removes an entry by id.
func (s *Storage) UnblockEntity(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.unblockEntity(tx, id)
	})
}

// UnblockEntityByValue removes an entry by its (type, value) pair.
func (s *Storage) UnblockEntityByValue(kind domain.EntityKind, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM blocked_entities WHERE entity_type = $1 AND entity_value = $2", kind, value)
		if err != nil {
			return fmt.Errorf("failed to delete blocked entity: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Blocklist entry not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

// IsBlocked reports whether a single (type, value) pair has a blocklist entry.
func (s *Storage) IsBlocked(kind domain.EntityKind, value string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM blocked_entities WHERE entity_type = $1 AND entity_value = $2)",
		kind, value).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check blocklist: %w", err)
	}
	return exists, nil
}

// BlockMatches probes several (type, value) pairs in one round trip and
// returns the entries that matched, with their reasons.
func (s *Storage) BlockMatches(probes []domain.BlockMatch) ([]domain.BlockMatch, error) {
	if len(probes) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(probes))
	args := make([]interface{}, 0, len(probes)*2)
	for i, p := range probes {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, string(p.Kind), p.Value)
	}

	query := fmt.Sprintf(`
		SELECT entity_type, entity_value, reason
		FROM blocked_entities
		WHERE (entity_type, entity_value) IN (%s)`, strings.Join(placeholders, ", "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to probe blocklist: %w", err)
	}
	defer rows.Close()

	var matches []domain.BlockMatch
	for rows.Next() {
		var m domain.BlockMatch
		if err := rows.Scan(&m.Kind, &m.Value, &m.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan blocklist match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// BlockedEntities lists entries for the admin view, optionally filtered by
// type and a substring search over values, newest first.
func (s *Storage) BlockedEntities(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error) {
	query := `
		SELECT id, entity_type, entity_value, reason, blocked_by, created_at
		FROM blocked_entities
		WHERE ($1 = '' OR entity_type = $1)
		  AND ($2 = '' OR entity_value ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := s.db.Query(query, string(kind), search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.BlockedEntity
	for rows.Next() {
		var e domain.BlockedEntity
		if err := rows.Scan(&e.Id, &e.Kind, &e.Value, &e.Reason, &e.BlockedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocked entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// BlocklistStats returns totals by kind plus a 7-day recency count.
func (s *Storage) BlocklistStats() (domain.BlocklistStats, error) {
	stats := domain.BlocklistStats{ByKind: make(map[string]int64)}

	rows, err := s.db.Query("SELECT entity_type, COUNT(*) FROM blocked_entities GROUP BY entity_type")
	if err != nil {
		return stats, fmt.Errorf("failed to count blocked entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, fmt.Errorf("failed to scan blocklist stats: %w", err)
		}
		stats.ByKind[kind] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = s.db.QueryRow("SELECT COUNT(*) FROM blocked_entities WHERE created_at > NOW() - INTERVAL '7 days'").Scan(&stats.Last7d)
	if err != nil {
		return stats, fmt.Errorf("failed to count recent blocks: %w", err)
	}
	return stats, nil
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) blockEntity(q Querier, entity domain.BlockedEntity) (domain.BlockedEntity, error) {
	err := q.QueryRow(`
		INSERT INTO blocked_entities(entity_type, entity_value, reason, blocked_by)
		VALUES($1, $2, $3, $4)
		RETURNING id, created_at`,
		entity.Kind, entity.Value, entity.Reason, entity.BlockedBy).Scan(&entity.Id, &entity.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.BlockedEntity{}, &internal_errors.ErrorWithStatusCode{Message: "Entity already blocked", StatusCode: http.StatusConflict}
		}
		return domain.BlockedEntity{}, fmt.Errorf("failed to insert blocked entity: %w", err)
	}
	return entity, nil
}

func (s *Storage) unblockEntity(q Querier, id int64) error {
	res, err := q.Exec("DELETE FROM blocked_entities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked entity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Blocklist entry not found", StatusCode: http.StatusNotFound}
	}
	return nil
}
