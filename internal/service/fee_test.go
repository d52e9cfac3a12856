package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

// --- Mocks ---

type MockFeeStorage struct {
	FeePolicyFunc       func() (domain.FeePolicy, error)
	UpdateFeePolicyFunc func(policy domain.FeePolicy) error
}

func (m *MockFeeStorage) FeePolicy() (domain.FeePolicy, error) {
	if m.FeePolicyFunc != nil {
		return m.FeePolicyFunc()
	}
	return domain.FeePolicy{Kind: domain.FeeFlat, Amount: decimal.NewFromFloat(1.0), Enabled: true}, nil
}

func (m *MockFeeStorage) UpdateFeePolicy(policy domain.FeePolicy) error {
	if m.UpdateFeePolicyFunc != nil {
		return m.UpdateFeePolicyFunc(policy)
	}
	return nil
}

// --- Tests ---

func TestQuoteWithPolicy(t *testing.T) {
	tests := []struct {
		name        string
		policy      domain.FeePolicy
		totalOutput string
		wantFee     string
		wantTotal   string
	}{
		{
			name:        "flat fee",
			policy:      domain.FeePolicy{Kind: domain.FeeFlat, Amount: decimal.RequireFromString("1.0"), Enabled: true},
			totalOutput: "250",
			wantFee:     "1",
			wantTotal:   "251",
		},
		{
			name:        "percentage fee 5 percent of 100",
			policy:      domain.FeePolicy{Kind: domain.FeePercentage, Amount: decimal.RequireFromString("5"), Enabled: true},
			totalOutput: "100",
			wantFee:     "5",
			wantTotal:   "105",
		},
		{
			name:        "percentage rounds half even at 8 places",
			policy:      domain.FeePolicy{Kind: domain.FeePercentage, Amount: decimal.RequireFromString("0.1"), Enabled: true},
			totalOutput: "0.00000125",
			// 0.00000125 * 0.001 = 0.00000000125 -> 0.00000000 (round to even)
			wantFee:   "0",
			wantTotal: "0.00000125",
		},
		{
			name:        "disabled policy charges nothing",
			policy:      domain.FeePolicy{Kind: domain.FeePercentage, Amount: decimal.RequireFromString("5"), Enabled: false},
			totalOutput: "100",
			wantFee:     "0",
			wantTotal:   "100",
		},
		{
			name:        "zero output with flat fee",
			policy:      domain.FeePolicy{Kind: domain.FeeFlat, Amount: decimal.RequireFromString("0.5"), Enabled: true},
			totalOutput: "0",
			wantFee:     "0.5",
			wantTotal:   "0.5",
		},
		{
			name:        "fractional amounts stay at 8 places",
			policy:      domain.FeePolicy{Kind: domain.FeePercentage, Amount: decimal.RequireFromString("2.5"), Enabled: true},
			totalOutput: "0.33333333",
			// 0.33333333 * 0.025 = 0.00833333325 -> 0.00833333
			wantFee:   "0.00833333",
			wantTotal: "0.34166666",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.totalOutput)

			quote := QuoteWithPolicy(tt.policy, total)

			assert.True(t, decimal.RequireFromString(tt.wantFee).Equal(quote.Fee),
				"fee: want %s got %s", tt.wantFee, quote.Fee)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(quote.Total),
				"total: want %s got %s", tt.wantTotal, quote.Total)
		})
	}
}

func TestUpdatePolicy(t *testing.T) {
	t.Run("valid update persisted with actor", func(t *testing.T) {
		var saved domain.FeePolicy
		storage := &MockFeeStorage{
			UpdateFeePolicyFunc: func(policy domain.FeePolicy) error {
				saved = policy
				return nil
			},
		}
		fee := NewFee(storage)

		policy, err := fee.UpdatePolicy(domain.FeePolicyUpdate{
			Kind:    domain.FeePercentage,
			Amount:  "2.5",
			Address: "AegisFeeAddr",
			Enabled: true,
		}, "root")

		require.NoError(t, err)
		assert.Equal(t, domain.FeePercentage, saved.Kind)
		assert.True(t, decimal.RequireFromString("2.5").Equal(saved.Amount))
		assert.Equal(t, "root", saved.UpdatedBy)
		assert.Equal(t, policy, saved)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		fee := NewFee(&MockFeeStorage{})

		_, err := fee.UpdatePolicy(domain.FeePolicyUpdate{Kind: "tiered", Amount: "1"}, "root")

		require.Error(t, err)
		assert.True(t, internal_errors.HasStatus(err, 400))
	})

	t.Run("non numeric amount rejected", func(t *testing.T) {
		fee := NewFee(&MockFeeStorage{})

		_, err := fee.UpdatePolicy(domain.FeePolicyUpdate{Kind: domain.FeeFlat, Amount: "abc"}, "root")

		require.Error(t, err)
		assert.True(t, internal_errors.HasStatus(err, 400))
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		fee := NewFee(&MockFeeStorage{})

		_, err := fee.UpdatePolicy(domain.FeePolicyUpdate{Kind: domain.FeeFlat, Amount: "-1"}, "root")

		require.Error(t, err)
		assert.True(t, internal_errors.HasStatus(err, 400))
	})

	t.Run("percentage above 100 rejected", func(t *testing.T) {
		fee := NewFee(&MockFeeStorage{})

		_, err := fee.UpdatePolicy(domain.FeePolicyUpdate{Kind: domain.FeePercentage, Amount: "100.01"}, "root")

		require.Error(t, err)
		assert.True(t, internal_errors.HasStatus(err, 400))
	})

	t.Run("storage failure surfaced", func(t *testing.T) {
		storage := &MockFeeStorage{
			UpdateFeePolicyFunc: func(policy domain.FeePolicy) error {
				return errors.New("write failed")
			},
		}
		fee := NewFee(storage)

		_, err := fee.UpdatePolicy(domain.FeePolicyUpdate{Kind: domain.FeeFlat, Amount: "1"}, "root")

		assert.Error(t, err)
	})
}

func TestQuote(t *testing.T) {
	t.Run("uses stored policy", func(t *testing.T) {
		storage := &MockFeeStorage{
			FeePolicyFunc: func() (domain.FeePolicy, error) {
				return domain.FeePolicy{Kind: domain.FeeFlat, Amount: decimal.RequireFromString("0.25"), Enabled: true}, nil
			},
		}
		fee := NewFee(storage)

		quote, err := fee.Quote(decimal.RequireFromString("10"))

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.25").Equal(quote.Fee))
	})

	t.Run("storage failure surfaced", func(t *testing.T) {
		storage := &MockFeeStorage{
			FeePolicyFunc: func() (domain.FeePolicy, error) {
				return domain.FeePolicy{}, errors.New("read failed")
			},
		}
		fee := NewFee(storage)

		_, err := fee.Quote(decimal.RequireFromString("10"))

		assert.Error(t, err)
	})
}
