package service

import (
	"strings"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

type BlocklistService interface {
	Block(req domain.BlockRequest, actor string) (domain.BlockedEntity, error)
	Unblock(id int64) error
	UnblockByValue(kind domain.EntityKind, value string) error
	Status(kind domain.EntityKind, value string) domain.BlockStatus
	FindBlockingReasons(username, email, ip string) ([]domain.BlockMatch, error)
	List(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error)
	Stats() (domain.BlocklistStats, error)
}

type BlocklistStorage interface {
	BlockEntity(entity domain.BlockedEntity) (domain.BlockedEntity, error)
	UnblockEntity(id int64) error
	UnblockEntityByValue(kind domain.EntityKind, value string) error
	IsBlocked(kind domain.EntityKind, value string) (bool, error)
	BlockMatches(probes []domain.BlockMatch) ([]domain.BlockMatch, error)
	BlockedEntities(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error)
	BlocklistStats() (domain.BlocklistStats, error)
}

type Blocklist struct {
	storage BlocklistStorage
}

func NewBlocklist(storage BlocklistStorage) *Blocklist {
	return &Blocklist{storage: storage}
}

func (b *Blocklist) Block(req domain.BlockRequest, actor string) (domain.BlockedEntity, error) {
	if !req.Kind.Valid() {
		return domain.BlockedEntity{}, errors.Validation("Unknown entity type")
	}
	value := strings.TrimSpace(req.Value)
	if req.Kind != domain.EntityIP {
		value = strings.ToLower(value)
	}
	if value == "" {
		return domain.BlockedEntity{}, errors.Validation("Entity value is required")
	}

	return b.storage.BlockEntity(domain.BlockedEntity{
		Kind:      req.Kind,
		Value:     value,
		Reason:    utils.Sanitize(req.Reason),
		BlockedBy: actor,
	})
}

func (b *Blocklist) Unblock(id int64) error {
	return b.storage.UnblockEntity(id)
}

// UnblockByValue removes an entry by its (kind, value) pair, normalizing the
// value the same way Block does so lookups hit.
func (b *Blocklist) UnblockByValue(kind domain.EntityKind, value string) error {
	if !kind.Valid() {
		return errors.Validation("Unknown entity type")
	}
	value = strings.TrimSpace(value)
	if kind != domain.EntityIP {
		value = strings.ToLower(value)
	}
	if value == "" {
		return errors.Validation("Entity value is required")
	}
	return b.storage.UnblockEntityByValue(kind, value)
}

// Status is the tagged membership test. Storage errors come back as
// LookupFailed so each caller decides between fail-open and fail-closed.
func (b *Blocklist) Status(kind domain.EntityKind, value string) domain.BlockStatus {
	blocked, err := b.storage.IsBlocked(kind, value)
	if err != nil {
		logger.Log.Error("blocklist lookup failed", "kind", kind, "error", err.Error())
		return domain.LookupFailed
	}
	if blocked {
		return domain.Blocked
	}
	return domain.NotBlocked
}

// FindBlockingReasons returns every active entry matching the username, email
// or IP. Used to surface why access was denied.
func (b *Blocklist) FindBlockingReasons(username, email, ip string) ([]domain.BlockMatch, error) {
	probes := make([]domain.BlockMatch, 0, 3)
	if username != "" {
		probes = append(probes, domain.BlockMatch{Kind: domain.EntityUsername, Value: strings.ToLower(username)})
	}
	if email != "" {
		probes = append(probes, domain.BlockMatch{Kind: domain.EntityEmail, Value: strings.ToLower(email)})
	}
	if ip != "" {
		probes = append(probes, domain.BlockMatch{Kind: domain.EntityIP, Value: ip})
	}
	return b.storage.BlockMatches(probes)
}

func (b *Blocklist) List(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error) {
	if kind != "" && !kind.Valid() {
		return nil, errors.Validation("Unknown entity type")
	}
	return b.storage.BlockedEntities(kind, search, clampLimit(limit), offset)
}

func (b *Blocklist) Stats() (domain.BlocklistStats, error) {
	return b.storage.BlocklistStats()
}
