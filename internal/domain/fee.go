package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeKind selects how the service fee is derived from the transaction amount.
type FeeKind string

const (
	FeeFlat       FeeKind = "flat"
	FeePercentage FeeKind = "percentage"
)

func (k FeeKind) Valid() bool {
	return k == FeeFlat || k == FeePercentage
}

// FeePolicy is the singleton fee configuration. Amount carries the flat fee
// when Kind is flat and the percentage rate when Kind is percentage.
type FeePolicy struct {
	Kind      FeeKind         `json:"fee_type"`
	Amount    decimal.Decimal `json:"fee_amount"`
	Address   string          `json:"fee_address"`
	Enabled   bool            `json:"enabled"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by"`
}

type FeePolicyUpdate struct {
	Kind    FeeKind `json:"fee_type" validate:"required,oneof=flat percentage"`
	Amount  string  `json:"fee_amount" validate:"required"`
	Address string  `json:"fee_address" validate:"omitempty,min=26,max=90"`
	Enabled bool    `json:"enabled"`
}

// FeeQuote is the resolved fee for a concrete transaction amount.
type FeeQuote struct {
	Kind    FeeKind         `json:"fee_type"`
	Fee     decimal.Decimal `json:"fee"`
	Address string          `json:"fee_address,omitempty"`
	Total   decimal.Decimal `json:"total"`
}
