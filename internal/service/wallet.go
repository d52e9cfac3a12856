package service

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/rpc"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/utils"
)

type WalletService interface {
	Link(ctx context.Context, userId domain.UserId, link domain.WalletLink) (domain.Wallet, error)
	Unlink(userId domain.UserId, address string) error
	Relabel(userId domain.UserId, address, label string) error
	List(userId domain.UserId) ([]domain.Wallet, error)
	Balance(ctx context.Context, userId domain.UserId, address string) (decimal.Decimal, error)
	Validate(ctx context.Context, address string) (rpc.AddressInfo, error)
	Transactions(ctx context.Context, userId domain.UserId, address string, limit int) ([]rpc.ListedTransaction, error)
}

type WalletStorage interface {
	SaveWallet(wallet domain.Wallet, maxPerUser int) (domain.Wallet, error)
	DeactivateWallet(userId domain.UserId, address string) error
	UpdateWalletLabel(userId domain.UserId, address, label string) error
	Wallets(userId domain.UserId) ([]domain.Wallet, error)
	OwnsWallet(userId domain.UserId, address string) (bool, error)
}

type WalletNode interface {
	ValidateAddress(ctx context.Context, address string) (rpc.AddressInfo, error)
	GetReceivedByAddress(ctx context.Context, address string, minconf int) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, count, skip int) ([]rpc.ListedTransaction, error)
}

type Wallet struct {
	storage WalletStorage
	node    WalletNode
	cfg     *config.Public
}

func NewWallet(storage WalletStorage, node WalletNode, cfg *config.Public) *Wallet {
	return &Wallet{storage: storage, node: node, cfg: cfg}
}

// Link validates the address against the node, then records the ownership
// claim. The per-user cap is enforced by the storage layer inside the same
// transaction as the insert.
func (w *Wallet) Link(ctx context.Context, userId domain.UserId, link domain.WalletLink) (domain.Wallet, error) {
	info, err := w.node.ValidateAddress(ctx, link.Address)
	if err != nil {
		return domain.Wallet{}, rpc.ClassifyNodeError(err)
	}
	if !info.IsValid {
		return domain.Wallet{}, errors.Validation("Invalid wallet address")
	}

	return w.storage.SaveWallet(domain.Wallet{
		UserId:  userId,
		Address: link.Address,
		Label:   utils.Sanitize(link.Label),
	}, w.cfg.MaxWalletsPerUser)
}

// Unlink deactivates the link rather than deleting it, so the address stays
// reserved for this user and can be relinked.
func (w *Wallet) Unlink(userId domain.UserId, address string) error {
	return w.storage.DeactivateWallet(userId, address)
}

func (w *Wallet) Relabel(userId domain.UserId, address, label string) error {
	return w.storage.UpdateWalletLabel(userId, address, utils.Sanitize(label))
}

func (w *Wallet) List(userId domain.UserId) ([]domain.Wallet, error) {
	return w.storage.Wallets(userId)
}

// Validate asks the node whether an address is well formed on this chain.
func (w *Wallet) Validate(ctx context.Context, address string) (rpc.AddressInfo, error) {
	info, err := w.node.ValidateAddress(ctx, address)
	if err != nil {
		return rpc.AddressInfo{}, rpc.ClassifyNodeError(err)
	}
	return info, nil
}

// Transactions returns node-side wallet transactions touching a linked
// address. The node cannot filter by address, so recent transactions are
// fetched and filtered here.
func (w *Wallet) Transactions(ctx context.Context, userId domain.UserId, address string, limit int) ([]rpc.ListedTransaction, error) {
	owns, err := w.storage.OwnsWallet(userId, address)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, &errors.ErrorWithStatusCode{Message: "Wallet not found or access denied", StatusCode: http.StatusForbidden}
	}

	limit = clampLimit(limit)
	all, err := w.node.ListTransactions(ctx, maxPageSize, 0)
	if err != nil {
		return nil, rpc.ClassifyNodeError(err)
	}

	matched := make([]rpc.ListedTransaction, 0, limit)
	for _, tx := range all {
		if tx.Address != address {
			continue
		}
		matched = append(matched, tx)
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

// Balance returns the amount received by a linked address. Ownership is
// checked first so one account cannot read another's balances.
func (w *Wallet) Balance(ctx context.Context, userId domain.UserId, address string) (decimal.Decimal, error) {
	owns, err := w.storage.OwnsWallet(userId, address)
	if err != nil {
		return decimal.Zero, err
	}
	if !owns {
		return decimal.Zero, &errors.ErrorWithStatusCode{Message: "Wallet not found or access denied", StatusCode: http.StatusForbidden}
	}

	balance, err := w.node.GetReceivedByAddress(ctx, address, 1)
	if err != nil {
		return decimal.Zero, rpc.ClassifyNodeError(err)
	}
	return balance, nil
}
