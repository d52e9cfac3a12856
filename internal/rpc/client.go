// Package rpc implements a JSON-RPC 1.0/2.0 client for the Aegisum node.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/logger"
)

// NodeError is a JSON-RPC level error returned by the node. Its message text
// comes straight from the node and is matched by callers to classify
// rejections.
type NodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("RPC Error: %s", e.Message)
}

type Client struct {
	url        string
	user       string
	password   string
	wallet     string
	httpClient *http.Client
}

func New(cfg config.Rpc, timeout time.Duration) *Client {
	return &Client{
		url:        fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		user:       cfg.User,
		password:   cfg.Password,
		wallet:     cfg.Wallet,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type request struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *NodeError      `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(request{
		Jsonrpc: "2.0",
		Id:      time.Now().UnixMilli(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.Error("RPC call failed", "method", method, "error", err.Error())
		return fmt.Errorf("rpc call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode rpc response for %s: %w", method, err)
	}
	if decoded.Error != nil {
		logger.Log.Error("RPC call failed", "method", method, "error", decoded.Error.Message)
		return decoded.Error
	}

	logger.Log.Debug("RPC call successful", "method", method)
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return fmt.Errorf("failed to unmarshal rpc result for %s: %w", method, err)
	}
	return nil
}

// =========================================================================
// Blockchain information
// =========================================================================

type BlockchainInfo struct {
	Chain                string  `json:"chain"`
	Blocks               int64   `json:"blocks"`
	Headers              int64   `json:"headers"`
	BestBlockHash        string  `json:"bestblockhash"`
	Difficulty           float64 `json:"difficulty"`
	VerificationProgress float64 `json:"verificationprogress"`
}

func (c *Client) GetBlockchainInfo(ctx context.Context) (BlockchainInfo, error) {
	var info BlockchainInfo
	err := c.call(ctx, "getblockchaininfo", nil, &info)
	return info, err
}

func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var count int64
	err := c.call(ctx, "getblockcount", nil, &count)
	return count, err
}

// =========================================================================
// Addresses and wallet
// =========================================================================

type AddressInfo struct {
	IsValid bool   `json:"isvalid"`
	Address string `json:"address"`
}

func (c *Client) ValidateAddress(ctx context.Context, address string) (AddressInfo, error) {
	var info AddressInfo
	err := c.call(ctx, "validateaddress", []interface{}{address}, &info)
	return info, err
}

func (c *Client) GetReceivedByAddress(ctx context.Context, address string, minconf int) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := c.call(ctx, "getreceivedbyaddress", []interface{}{address, minconf}, &amount)
	return amount, err
}

type WalletInfo struct {
	WalletName string          `json:"walletname"`
	Balance    decimal.Decimal `json:"balance"`
	TxCount    int64           `json:"txcount"`
}

func (c *Client) GetWalletInfo(ctx context.Context) (WalletInfo, error) {
	var info WalletInfo
	err := c.call(ctx, "getwalletinfo", nil, &info)
	return info, err
}

// =========================================================================
// Transactions
// =========================================================================

type Vout struct {
	Value decimal.Decimal `json:"value"`
	N     int             `json:"n"`
}

type DecodedTransaction struct {
	Txid string `json:"txid"`
	Vout []Vout `json:"vout"`
}

func (c *Client) DecodeRawTransaction(ctx context.Context, rawHex string) (DecodedTransaction, error) {
	var tx DecodedTransaction
	err := c.call(ctx, "decoderawtransaction", []interface{}{rawHex}, &tx)
	return tx, err
}

type MempoolAcceptResult struct {
	Txid         string `json:"txid"`
	Allowed      bool   `json:"allowed"`
	RejectReason string `json:"reject-reason"`
}

func (c *Client) TestMempoolAccept(ctx context.Context, rawHex string) ([]MempoolAcceptResult, error) {
	var results []MempoolAcceptResult
	err := c.call(ctx, "testmempoolaccept", []interface{}{[]string{rawHex}}, &results)
	return results, err
}

func (c *Client) SendRawTransaction(ctx context.Context, rawHex string) (string, error) {
	var txid string
	err := c.call(ctx, "sendrawtransaction", []interface{}{rawHex}, &txid)
	return txid, err
}

type WalletTransaction struct {
	Txid          string          `json:"txid"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Confirmations int64           `json:"confirmations"`
	BlockHash     string          `json:"blockhash"`
	BlockTime     int64           `json:"blocktime"`
	Time          int64           `json:"time"`
}

func (c *Client) GetTransaction(ctx context.Context, txid string) (WalletTransaction, error) {
	var tx WalletTransaction
	err := c.call(ctx, "gettransaction", []interface{}{txid}, &tx)
	return tx, err
}

type ListedTransaction struct {
	Address       string          `json:"address"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Confirmations int64           `json:"confirmations"`
	Txid          string          `json:"txid"`
	Time          int64           `json:"time"`
}

// ListTransactions returns recent wallet transactions across all accounts.
// Callers filter by address; the node cannot do that server side.
func (c *Client) ListTransactions(ctx context.Context, count, skip int) ([]ListedTransaction, error) {
	var txs []ListedTransaction
	err := c.call(ctx, "listtransactions", []interface{}{"*", count, skip}, &txs)
	return txs, err
}

// =========================================================================
// Fees and network
// =========================================================================

type FeeEstimate struct {
	FeeRate decimal.Decimal `json:"feerate"`
	Blocks  int             `json:"blocks"`
	Errors  []string        `json:"errors"`
}

func (c *Client) EstimateSmartFee(ctx context.Context, confTarget int, estimateMode string) (FeeEstimate, error) {
	var estimate FeeEstimate
	err := c.call(ctx, "estimatesmartfee", []interface{}{confTarget, estimateMode}, &estimate)
	return estimate, err
}

type NetworkInfo struct {
	Version     int64  `json:"version"`
	Subversion  string `json:"subversion"`
	Connections int64  `json:"connections"`
}

func (c *Client) GetNetworkInfo(ctx context.Context) (NetworkInfo, error) {
	var info NetworkInfo
	err := c.call(ctx, "getnetworkinfo", nil, &info)
	return info, err
}

func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", nil, nil)
}
