package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

type TransactionLog struct {
	Id        int64           `json:"id"`
	UserId    UserId          `json:"user_id"`
	Txid      string          `json:"txid,omitempty"`
	RawHex    string          `json:"-"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Status    TxStatus        `json:"status"`
	Error     string          `json:"error,omitempty"`
	IP        string          `json:"ip_address,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type BroadcastRequest struct {
	RawHex  string `json:"raw_tx" validate:"required,hexadecimal"`
	Address string `json:"from_address" validate:"required,min=26,max=90"`
}

type BroadcastResult struct {
	Txid   string          `json:"txid"`
	Fee    decimal.Decimal `json:"fee"`
	Status TxStatus        `json:"status"`
}
