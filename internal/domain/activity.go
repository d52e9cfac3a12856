package domain

import "time"

// ActivityRecord is one append-only ledger row per inbound request. UserId is
// nil for unauthenticated traffic.
type ActivityRecord struct {
	Id        int64     `json:"id"`
	UserId    *UserId   `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	IP        string    `json:"ip_address"`
	Action    string    `json:"action"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SuspiciousIP is an address observed across several distinct accounts inside
// the detector's lookback window.
type SuspiciousIP struct {
	IP           string    `json:"ip_address"`
	UniqueUsers  int       `json:"unique_users"`
	Events       int       `json:"events"`
	LastActivity time.Time `json:"last_activity"`
}

// SuspiciousUser is an account observed from several distinct addresses inside
// the detector's lookback window.
type SuspiciousUser struct {
	UserId       UserId    `json:"user_id"`
	Username     string    `json:"username"`
	UniqueIPs    int       `json:"unique_ips"`
	Events       int       `json:"events"`
	LastActivity time.Time `json:"last_activity"`
}
