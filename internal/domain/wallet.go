package domain

import "time"

type WalletId int64

type Wallet struct {
	Id        WalletId  `json:"id"`
	UserId    UserId    `json:"user_id"`
	Address   string    `json:"address"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WalletLink struct {
	Address string `json:"address" validate:"required,min=26,max=90"`
	Label   string `json:"label" validate:"max=64"`
}
