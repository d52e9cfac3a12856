package domain

import "time"

// EntityKind names the dimension a blocklist entry matches on.
type EntityKind string

const (
	EntityUsername EntityKind = "username"
	EntityEmail    EntityKind = "email"
	EntityIP       EntityKind = "ip"
)

func (k EntityKind) Valid() bool {
	switch k {
	case EntityUsername, EntityEmail, EntityIP:
		return true
	}
	return false
}

type BlockedEntity struct {
	Id        int64      `json:"id"`
	Kind      EntityKind `json:"entity_type"`
	Value     string     `json:"entity_value"`
	Reason    string     `json:"reason"`
	BlockedBy string     `json:"blocked_by"`
	CreatedAt time.Time  `json:"created_at"`
}

type BlockRequest struct {
	Kind   EntityKind `json:"entity_type" validate:"required,oneof=username email ip"`
	Value  string     `json:"entity_value" validate:"required,max=128"`
	Reason string     `json:"reason" validate:"max=512"`
}

// BlockStatus is a three-valued lookup result. Lookup failures are reported
// distinctly so each call site can choose whether to fail open or closed.
type BlockStatus int

const (
	NotBlocked BlockStatus = iota
	Blocked
	LookupFailed
)

func (s BlockStatus) String() string {
	switch s {
	case NotBlocked:
		return "not_blocked"
	case Blocked:
		return "blocked"
	case LookupFailed:
		return "lookup_failed"
	}
	return "unknown"
}

// BlockMatch pairs a probed entity with the entry that blocked it.
type BlockMatch struct {
	Kind   EntityKind `json:"entity_type"`
	Value  string     `json:"entity_value"`
	Reason string     `json:"reason"`
}

type BlocklistStats struct {
	Total   int64            `json:"total"`
	ByKind  map[string]int64 `json:"by_type"`
	Last7d  int64            `json:"last_7_days"`
}
