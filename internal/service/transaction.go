package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/rpc"
)

type TransactionService interface {
	Broadcast(ctx context.Context, user domain.User, rc domain.RequestContext, req domain.BroadcastRequest) (domain.BroadcastResult, domain.FeeQuote, error)
	History(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error)
	Status(ctx context.Context, userId domain.UserId, txid string) (TxStatusReport, error)
	EstimateFee(ctx context.Context, confTarget int, estimateMode string) (FeeEstimateReport, error)
}

type TransactionStorage interface {
	OwnsWallet(userId domain.UserId, address string) (bool, error)
	SaveTransactionLog(log domain.TransactionLog) (int64, error)
	UpdateTransactionLog(id int64, txid string, status domain.TxStatus, errMsg string) error
	TransactionLogs(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error)
	TransactionLogByTxid(userId domain.UserId, txid string) (domain.TransactionLog, error)
}

type TransactionNode interface {
	DecodeRawTransaction(ctx context.Context, rawHex string) (rpc.DecodedTransaction, error)
	TestMempoolAccept(ctx context.Context, rawHex string) ([]rpc.MempoolAcceptResult, error)
	SendRawTransaction(ctx context.Context, rawHex string) (string, error)
	GetTransaction(ctx context.Context, txid string) (rpc.WalletTransaction, error)
	EstimateSmartFee(ctx context.Context, confTarget int, estimateMode string) (rpc.FeeEstimate, error)
}

type Transaction struct {
	storage TransactionStorage
	node    TransactionNode
	access  *Access
	fee     *Fee
}

func NewTransaction(storage TransactionStorage, node TransactionNode, access *Access, fee *Fee) *Transaction {
	return &Transaction{storage: storage, node: node, access: access, fee: fee}
}

// Broadcast pushes a signed transaction through the full pipeline: identity
// recheck, wallet ownership, decode, mempool dry run, fee resolution, then
// the actual send. A log row is written before the send and updated with the
// outcome, so a crash mid-broadcast leaves an auditable pending row.
func (t *Transaction) Broadcast(ctx context.Context, user domain.User, rc domain.RequestContext, req domain.BroadcastRequest) (domain.BroadcastResult, domain.FeeQuote, error) {
	if _, err := t.access.AuthorizeBroadcast(user, rc.IP); err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, err
	}

	owns, err := t.storage.OwnsWallet(user.Id, req.Address)
	if err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, err
	}
	if !owns {
		return domain.BroadcastResult{}, domain.FeeQuote{}, &errors.ErrorWithStatusCode{Message: "Wallet not found or access denied", StatusCode: http.StatusForbidden}
	}

	decoded, err := t.node.DecodeRawTransaction(ctx, req.RawHex)
	if err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, rpc.ClassifyNodeError(err)
	}

	accepts, err := t.node.TestMempoolAccept(ctx, req.RawHex)
	if err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, rpc.ClassifyNodeError(err)
	}
	if len(accepts) == 0 {
		return domain.BroadcastResult{}, domain.FeeQuote{}, fmt.Errorf("empty testmempoolaccept result")
	}
	if !accepts[0].Allowed {
		return domain.BroadcastResult{}, domain.FeeQuote{},
			&errors.ErrorWithStatusCode{Message: fmt.Sprintf("Transaction rejected: %s", accepts[0].RejectReason), StatusCode: http.StatusBadRequest}
	}

	totalOutput := decimal.Zero
	for _, vout := range decoded.Vout {
		totalOutput = totalOutput.Add(vout.Value)
	}

	quote, err := t.fee.Quote(totalOutput)
	if err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, err
	}

	logId, err := t.storage.SaveTransactionLog(domain.TransactionLog{
		UserId: user.Id,
		Txid:   decoded.Txid,
		RawHex: req.RawHex,
		Amount: totalOutput,
		Fee:    quote.Fee,
		Status: domain.TxPending,
		IP:     rc.IP,
	})
	if err != nil {
		return domain.BroadcastResult{}, domain.FeeQuote{}, err
	}

	txid, err := t.node.SendRawTransaction(ctx, req.RawHex)
	if err != nil {
		classified := rpc.ClassifyNodeError(err)
		if updateErr := t.storage.UpdateTransactionLog(logId, "", domain.TxFailed, classified.Error()); updateErr != nil {
			logger.Log.Error("failed to mark broadcast as failed", "log_id", logId, "error", updateErr.Error())
		}
		return domain.BroadcastResult{}, domain.FeeQuote{}, classified
	}

	if err := t.storage.UpdateTransactionLog(logId, txid, domain.TxConfirmed, ""); err != nil {
		// The send went through; surface the result anyway.
		logger.Log.Error("failed to mark broadcast as confirmed", "log_id", logId, "txid", txid, "error", err.Error())
	}

	logger.Log.Info("transaction broadcast",
		"txid", txid, "user_id", user.Id, "amount", totalOutput.String(), "fee", quote.Fee.String(), "ip", rc.IP)

	return domain.BroadcastResult{Txid: txid, Fee: quote.Fee, Status: domain.TxConfirmed}, quote, nil
}

func (t *Transaction) History(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error) {
	return t.storage.TransactionLogs(userId, clampLimit(limit), offset)
}

// TxStatusReport is the idempotent status read path. When the node still
// knows the transaction, its answer wins over the local log.
type TxStatusReport struct {
	Txid          string          `json:"txid"`
	Status        domain.TxStatus `json:"status"`
	Confirmations int64           `json:"confirmations,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	BlockHash     string          `json:"blockhash,omitempty"`
	BlockTime     int64           `json:"blocktime,omitempty"`
}

func (t *Transaction) Status(ctx context.Context, userId domain.UserId, txid string) (TxStatusReport, error) {
	log, err := t.storage.TransactionLogByTxid(userId, txid)
	if err != nil {
		return TxStatusReport{}, err
	}

	tx, err := t.node.GetTransaction(ctx, txid)
	if err != nil {
		// The node may not know wallet-external transactions; fall back to
		// the recorded log state.
		logger.Log.Debug("status fallback to log", "txid", txid, "error", err.Error())
		return TxStatusReport{Txid: txid, Status: log.Status, Amount: log.Amount, Fee: log.Fee}, nil
	}

	status := domain.TxPending
	if tx.Confirmations > 0 {
		status = domain.TxConfirmed
	}
	return TxStatusReport{
		Txid:          txid,
		Status:        status,
		Confirmations: tx.Confirmations,
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		BlockHash:     tx.BlockHash,
		BlockTime:     tx.BlockTime,
	}, nil
}

// FeeEstimateReport pairs the node's advisory network fee estimate with the
// service's own fee policy.
type FeeEstimateReport struct {
	NetworkFeeRate decimal.Decimal  `json:"network_fee_rate"`
	Blocks         int              `json:"blocks"`
	Policy         domain.FeePolicy `json:"policy"`
}

func (t *Transaction) EstimateFee(ctx context.Context, confTarget int, estimateMode string) (FeeEstimateReport, error) {
	if confTarget <= 0 {
		confTarget = 3
	}
	if estimateMode == "" {
		estimateMode = "CONSERVATIVE"
	}

	estimate, err := t.node.EstimateSmartFee(ctx, confTarget, estimateMode)
	if err != nil {
		return FeeEstimateReport{}, rpc.ClassifyNodeError(err)
	}

	policy, err := t.fee.Policy()
	if err != nil {
		return FeeEstimateReport{}, err
	}

	return FeeEstimateReport{
		NetworkFeeRate: estimate.FeeRate,
		Blocks:         estimate.Blocks,
		Policy:         policy,
	}, nil
}
