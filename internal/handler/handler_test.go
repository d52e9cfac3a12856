package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	jwt_internal "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/jwt"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/rpc"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/service"
)

// --- Shared scaffolding ---

var testJwt = jwt_internal.New("test_secret", time.Hour)

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("X-REAL-IP", "203.0.113.9")
	return req
}

func authedRequest(t *testing.T, method, url string, body []byte, user domain.User) *http.Request {
	t.Helper()
	req := createRequest(t, method, url, body)
	token, err := testJwt.NewToken(user)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func adminRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	req := createRequest(t, method, url, body)
	token, err := testJwt.NewAdminToken("root")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// passGuard stands in for the per-request account check and lets every
// principal through with a fixed fresh row.
type passGuard struct{}

func (passGuard) AuthorizeRequest(id domain.UserId, ip string) (domain.User, error) {
	return domain.User{Id: id, Username: "alice"}, nil
}

// userRouter wires a single route through the same auth and tracking
// middleware the real router uses.
func userRouter(method, route string, fn http.HandlerFunc) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.NewAuth(testJwt, passGuard{})
	sub := router.PathPrefix("/").Subrouter()
	sub.Use(auth.NeedAuth())
	sub.Use(middleware.TrackActivity(&MockActivityService{}, "api"))
	sub.HandleFunc(route, fn).Methods(method)
	return router
}

func adminRouter(method, route string, fn http.HandlerFunc) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.NewAuth(testJwt, passGuard{})
	sub := router.PathPrefix("/").Subrouter()
	sub.Use(auth.AdminOnly())
	sub.HandleFunc(route, fn).Methods(method)
	return router
}

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{MaxWalletsPerUser: 5}}
}

// --- Service mocks ---

type MockAuthService struct {
	RegisterFunc func(creds domain.UserCreds, ip string) (domain.User, string, error)
	LoginFunc    func(creds domain.LoginCreds, ip string) (domain.User, string, error)
	RefreshFunc  func(id domain.UserId) (string, error)
	ProfileFunc  func(id domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Refresh(id domain.UserId) (string, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(id)
	}
	return "refreshed_token", nil
}

func (m *MockAuthService) Register(creds domain.UserCreds, ip string) (domain.User, string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(creds, ip)
	}
	return domain.User{Id: 1, Username: creds.Username}, "test_token", nil
}

func (m *MockAuthService) Login(creds domain.LoginCreds, ip string) (domain.User, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(creds, ip)
	}
	return domain.User{Id: 1, Username: creds.Username}, "test_token", nil
}

func (m *MockAuthService) Profile(id domain.UserId) (domain.User, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(id)
	}
	return domain.User{Id: id, Username: "alice"}, nil
}

type MockWalletService struct {
	LinkFunc         func(ctx context.Context, userId domain.UserId, link domain.WalletLink) (domain.Wallet, error)
	UnlinkFunc       func(userId domain.UserId, address string) error
	RelabelFunc      func(userId domain.UserId, address, label string) error
	ListFunc         func(userId domain.UserId) ([]domain.Wallet, error)
	BalanceFunc      func(ctx context.Context, userId domain.UserId, address string) (decimal.Decimal, error)
	ValidateFunc     func(ctx context.Context, address string) (rpc.AddressInfo, error)
	TransactionsFunc func(ctx context.Context, userId domain.UserId, address string, limit int) ([]rpc.ListedTransaction, error)
}

func (m *MockWalletService) Relabel(userId domain.UserId, address, label string) error {
	if m.RelabelFunc != nil {
		return m.RelabelFunc(userId, address, label)
	}
	return nil
}

func (m *MockWalletService) Validate(ctx context.Context, address string) (rpc.AddressInfo, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, address)
	}
	return rpc.AddressInfo{IsValid: true, Address: address}, nil
}

func (m *MockWalletService) Transactions(ctx context.Context, userId domain.UserId, address string, limit int) ([]rpc.ListedTransaction, error) {
	if m.TransactionsFunc != nil {
		return m.TransactionsFunc(ctx, userId, address, limit)
	}
	return nil, nil
}

func (m *MockWalletService) Link(ctx context.Context, userId domain.UserId, link domain.WalletLink) (domain.Wallet, error) {
	if m.LinkFunc != nil {
		return m.LinkFunc(ctx, userId, link)
	}
	return domain.Wallet{Id: 1, UserId: userId, Address: link.Address}, nil
}

func (m *MockWalletService) Unlink(userId domain.UserId, address string) error {
	if m.UnlinkFunc != nil {
		return m.UnlinkFunc(userId, address)
	}
	return nil
}

func (m *MockWalletService) List(userId domain.UserId) ([]domain.Wallet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(userId)
	}
	return nil, nil
}

func (m *MockWalletService) Balance(ctx context.Context, userId domain.UserId, address string) (decimal.Decimal, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, userId, address)
	}
	return decimal.Zero, nil
}

type MockTransactionService struct {
	BroadcastFunc   func(ctx context.Context, user domain.User, rc domain.RequestContext, req domain.BroadcastRequest) (domain.BroadcastResult, domain.FeeQuote, error)
	HistoryFunc     func(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error)
	StatusFunc      func(ctx context.Context, userId domain.UserId, txid string) (service.TxStatusReport, error)
	EstimateFeeFunc func(ctx context.Context, confTarget int, estimateMode string) (service.FeeEstimateReport, error)
}

func (m *MockTransactionService) Broadcast(ctx context.Context, user domain.User, rc domain.RequestContext, req domain.BroadcastRequest) (domain.BroadcastResult, domain.FeeQuote, error) {
	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(ctx, user, rc, req)
	}
	return domain.BroadcastResult{Txid: "test_txid", Status: domain.TxConfirmed}, domain.FeeQuote{}, nil
}

func (m *MockTransactionService) History(userId domain.UserId, limit, offset int) ([]domain.TransactionLog, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(userId, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionService) Status(ctx context.Context, userId domain.UserId, txid string) (service.TxStatusReport, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, userId, txid)
	}
	return service.TxStatusReport{Txid: txid, Status: domain.TxConfirmed}, nil
}

func (m *MockTransactionService) EstimateFee(ctx context.Context, confTarget int, estimateMode string) (service.FeeEstimateReport, error) {
	if m.EstimateFeeFunc != nil {
		return m.EstimateFeeFunc(ctx, confTarget, estimateMode)
	}
	return service.FeeEstimateReport{}, nil
}

type MockFeeService struct {
	PolicyFunc       func() (domain.FeePolicy, error)
	UpdatePolicyFunc func(update domain.FeePolicyUpdate, actor string) (domain.FeePolicy, error)
	QuoteFunc        func(totalOutput decimal.Decimal) (domain.FeeQuote, error)
}

func (m *MockFeeService) Policy() (domain.FeePolicy, error) {
	if m.PolicyFunc != nil {
		return m.PolicyFunc()
	}
	return domain.FeePolicy{Kind: domain.FeeFlat, Amount: decimal.NewFromInt(1), Enabled: true}, nil
}

func (m *MockFeeService) UpdatePolicy(update domain.FeePolicyUpdate, actor string) (domain.FeePolicy, error) {
	if m.UpdatePolicyFunc != nil {
		return m.UpdatePolicyFunc(update, actor)
	}
	return domain.FeePolicy{Kind: update.Kind, UpdatedBy: actor}, nil
}

func (m *MockFeeService) Quote(totalOutput decimal.Decimal) (domain.FeeQuote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(totalOutput)
	}
	return domain.FeeQuote{}, nil
}

type MockBlocklistService struct {
	BlockFunc               func(req domain.BlockRequest, actor string) (domain.BlockedEntity, error)
	UnblockFunc             func(id int64) error
	UnblockByValueFunc      func(kind domain.EntityKind, value string) error
	StatusFunc              func(kind domain.EntityKind, value string) domain.BlockStatus
	FindBlockingReasonsFunc func(username, email, ip string) ([]domain.BlockMatch, error)
	ListFunc                func(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error)
	StatsFunc               func() (domain.BlocklistStats, error)
}

func (m *MockBlocklistService) Block(req domain.BlockRequest, actor string) (domain.BlockedEntity, error) {
	if m.BlockFunc != nil {
		return m.BlockFunc(req, actor)
	}
	return domain.BlockedEntity{Id: 1, Kind: req.Kind, Value: req.Value, BlockedBy: actor}, nil
}

func (m *MockBlocklistService) Unblock(id int64) error {
	if m.UnblockFunc != nil {
		return m.UnblockFunc(id)
	}
	return nil
}

func (m *MockBlocklistService) UnblockByValue(kind domain.EntityKind, value string) error {
	if m.UnblockByValueFunc != nil {
		return m.UnblockByValueFunc(kind, value)
	}
	return nil
}

func (m *MockBlocklistService) Status(kind domain.EntityKind, value string) domain.BlockStatus {
	if m.StatusFunc != nil {
		return m.StatusFunc(kind, value)
	}
	return domain.NotBlocked
}

func (m *MockBlocklistService) FindBlockingReasons(username, email, ip string) ([]domain.BlockMatch, error) {
	if m.FindBlockingReasonsFunc != nil {
		return m.FindBlockingReasonsFunc(username, email, ip)
	}
	return nil, nil
}

func (m *MockBlocklistService) List(kind domain.EntityKind, search string, limit, offset int) ([]domain.BlockedEntity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(kind, search, limit, offset)
	}
	return nil, nil
}

func (m *MockBlocklistService) Stats() (domain.BlocklistStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return domain.BlocklistStats{}, nil
}

type MockActivityService struct {
	RecordFunc          func(record domain.ActivityRecord)
	SuspiciousIPsFunc   func(limit, offset int) ([]domain.SuspiciousIP, error)
	SuspiciousUsersFunc func(limit, offset int) ([]domain.SuspiciousUser, error)
	UserActivityFunc    func(userId domain.UserId, limit int) ([]domain.ActivityRecord, error)
	IPActivityFunc      func(ip string, limit int) ([]domain.ActivityRecord, error)
}

func (m *MockActivityService) Record(record domain.ActivityRecord) {
	if m.RecordFunc != nil {
		m.RecordFunc(record)
	}
}

func (m *MockActivityService) SuspiciousIPs(limit, offset int) ([]domain.SuspiciousIP, error) {
	if m.SuspiciousIPsFunc != nil {
		return m.SuspiciousIPsFunc(limit, offset)
	}
	return nil, nil
}

func (m *MockActivityService) SuspiciousUsers(limit, offset int) ([]domain.SuspiciousUser, error) {
	if m.SuspiciousUsersFunc != nil {
		return m.SuspiciousUsersFunc(limit, offset)
	}
	return nil, nil
}

func (m *MockActivityService) UserActivity(userId domain.UserId, limit int) ([]domain.ActivityRecord, error) {
	if m.UserActivityFunc != nil {
		return m.UserActivityFunc(userId, limit)
	}
	return nil, nil
}

func (m *MockActivityService) IPActivity(ip string, limit int) ([]domain.ActivityRecord, error) {
	if m.IPActivityFunc != nil {
		return m.IPActivityFunc(ip, limit)
	}
	return nil, nil
}

type MockAdminService struct {
	LoginFunc           func(creds domain.LoginCreds) (string, error)
	UsersFunc           func(search string, limit, offset int) ([]domain.User, error)
	UserDetailsFunc     func(id domain.UserId) (domain.UserDetails, error)
	SetUserBlockedFunc  func(id domain.UserId, blocked bool) error
	DashboardFunc       func() (domain.DashboardStats, error)
	TransactionLogsFunc func(limit, offset int) ([]domain.TransactionLog, error)
}

func (m *MockAdminService) Login(creds domain.LoginCreds) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(creds)
	}
	return "admin_token", nil
}

func (m *MockAdminService) Users(search string, limit, offset int) ([]domain.User, error) {
	if m.UsersFunc != nil {
		return m.UsersFunc(search, limit, offset)
	}
	return nil, nil
}

func (m *MockAdminService) UserDetails(id domain.UserId) (domain.UserDetails, error) {
	if m.UserDetailsFunc != nil {
		return m.UserDetailsFunc(id)
	}
	return domain.UserDetails{User: domain.User{Id: id}}, nil
}

func (m *MockAdminService) SetUserBlocked(id domain.UserId, blocked bool) error {
	if m.SetUserBlockedFunc != nil {
		return m.SetUserBlockedFunc(id, blocked)
	}
	return nil
}

func (m *MockAdminService) Dashboard() (domain.DashboardStats, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc()
	}
	return domain.DashboardStats{}, nil
}

func (m *MockAdminService) TransactionLogs(limit, offset int) ([]domain.TransactionLog, error) {
	if m.TransactionLogsFunc != nil {
		return m.TransactionLogsFunc(limit, offset)
	}
	return nil, nil
}

type MockNodeService struct {
	HealthFunc         func(ctx context.Context) service.HealthReport
	BlockchainInfoFunc func(ctx context.Context) (rpc.BlockchainInfo, error)
}

func (m *MockNodeService) Health(ctx context.Context) service.HealthReport {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return service.HealthReport{Status: "healthy"}
}

func (m *MockNodeService) BlockchainInfo(ctx context.Context) (rpc.BlockchainInfo, error) {
	if m.BlockchainInfoFunc != nil {
		return m.BlockchainInfoFunc(ctx)
	}
	return rpc.BlockchainInfo{}, nil
}
