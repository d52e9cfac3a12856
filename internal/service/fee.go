package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// feeScale is the currency's smallest unit, 8 decimal places.
const feeScale = 8

var oneHundred = decimal.NewFromInt(100)

type FeeService interface {
	Policy() (domain.FeePolicy, error)
	UpdatePolicy(update domain.FeePolicyUpdate, actor string) (domain.FeePolicy, error)
	Quote(totalOutput decimal.Decimal) (domain.FeeQuote, error)
}

type FeeStorage interface {
	FeePolicy() (domain.FeePolicy, error)
	UpdateFeePolicy(policy domain.FeePolicy) error
}

// Fee resolves the active withdrawal-fee policy against transaction amounts.
// All arithmetic is fixed-point; results are rounded half-even at 8 decimal
// places.
type Fee struct {
	storage FeeStorage
}

func NewFee(storage FeeStorage) *Fee {
	return &Fee{storage: storage}
}

func (f *Fee) Policy() (domain.FeePolicy, error) {
	return f.storage.FeePolicy()
}

func (f *Fee) UpdatePolicy(update domain.FeePolicyUpdate, actor string) (domain.FeePolicy, error) {
	if !update.Kind.Valid() {
		return domain.FeePolicy{}, errors.Validation("Unknown fee type")
	}
	amount, err := decimal.NewFromString(update.Amount)
	if err != nil {
		return domain.FeePolicy{}, errors.Validation("Fee amount is not a valid number")
	}
	if amount.IsNegative() {
		return domain.FeePolicy{}, errors.Validation("Fee amount must not be negative")
	}
	if update.Kind == domain.FeePercentage && amount.GreaterThan(oneHundred) {
		return domain.FeePolicy{}, errors.Validation("Percentage fee must not exceed 100")
	}

	policy := domain.FeePolicy{
		Kind:      update.Kind,
		Amount:    amount,
		Address:   update.Address,
		Enabled:   update.Enabled,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: actor,
	}
	if err := f.storage.UpdateFeePolicy(policy); err != nil {
		return domain.FeePolicy{}, err
	}
	return policy, nil
}

// Quote computes the service fee for a transaction's total output value.
func (f *Fee) Quote(totalOutput decimal.Decimal) (domain.FeeQuote, error) {
	policy, err := f.storage.FeePolicy()
	if err != nil {
		return domain.FeeQuote{}, err
	}
	return QuoteWithPolicy(policy, totalOutput), nil
}

// QuoteWithPolicy is the pure fee calculation, split out for reuse when the
// caller already holds the policy.
func QuoteWithPolicy(policy domain.FeePolicy, totalOutput decimal.Decimal) domain.FeeQuote {
	quote := domain.FeeQuote{Kind: policy.Kind, Address: policy.Address}

	if !policy.Enabled {
		quote.Fee = decimal.Zero
		quote.Total = totalOutput
		return quote
	}

	switch policy.Kind {
	case domain.FeeFlat:
		quote.Fee = policy.Amount.RoundBank(feeScale)
	case domain.FeePercentage:
		quote.Fee = totalOutput.Mul(policy.Amount).Div(oneHundred).RoundBank(feeScale)
	default:
		quote.Fee = decimal.Zero
	}

	quote.Total = totalOutput.Add(quote.Fee).RoundBank(feeScale)
	return quote
}
