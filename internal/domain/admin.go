package domain

type DashboardStats struct {
	Users           int64 `json:"users"`
	ActiveUsers     int64 `json:"active_users"`
	BlockedUsers    int64 `json:"blocked_users"`
	LockedUsers     int64 `json:"locked_users"`
	Wallets         int64 `json:"wallets"`
	Transactions    int64 `json:"transactions"`
	Transactions24h int64 `json:"transactions_24h"`
}

type UserDetails struct {
	User     User             `json:"user"`
	Wallets  []Wallet         `json:"wallets"`
	Activity []ActivityRecord `json:"recent_activity"`
}
