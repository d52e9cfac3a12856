package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/domain"
	internal_errors "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/errors"
)

func TestAdminLoginHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}

	route := "/api/auth/admin-login"
	router := mux.NewRouter()
	router.HandleFunc(route, h.AdminLogin).Methods(http.MethodPost)
	requestBody := []byte(`{"username": "root", "password": "hunter22"}`)

	t.Run("successful login returns token", func(t *testing.T) {
		h.admin = &MockAdminService{
			LoginFunc: func(creds domain.LoginCreds) (string, error) {
				return "admin_jwt", nil
			},
		}

		req := createRequest(t, http.MethodPost, route, requestBody)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "admin_jwt", resp["token"])
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		h.admin = &MockAdminService{
			LoginFunc: func(creds domain.LoginCreds) (string, error) {
				return "", internal_errors.Unauthorized("Invalid credentials")
			},
		}

		req := createRequest(t, http.MethodPost, route, requestBody)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestBlockUserHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodPost, "/api/admin/users/{id}/block", h.BlockUser)

	t.Run("admin blocks a user", func(t *testing.T) {
		var gotId domain.UserId
		var gotBlocked bool
		h.admin = &MockAdminService{
			SetUserBlockedFunc: func(id domain.UserId, blocked bool) error {
				gotId = id
				gotBlocked = blocked
				return nil
			},
		}

		req := adminRequest(t, http.MethodPost, "/api/admin/users/42/block", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.UserId(42), gotId)
		assert.True(t, gotBlocked)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		h.admin = &MockAdminService{}

		req := adminRequest(t, http.MethodPost, "/api/admin/users/abc/block", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("user token is 403", func(t *testing.T) {
		h.admin = &MockAdminService{}

		req := authedRequest(t, http.MethodPost, "/api/admin/users/42/block", nil, domain.User{Id: 7, Username: "alice"})
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestBlockEntityHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodPost, "/api/admin/blocklist", h.BlockEntity)
	requestBody := []byte(`{"entity_type": "ip", "entity_value": "1.2.3.4", "reason": "abuse"}`)

	t.Run("entity blocked with admin actor", func(t *testing.T) {
		var gotActor string
		h.blocklist = &MockBlocklistService{
			BlockFunc: func(req domain.BlockRequest, actor string) (domain.BlockedEntity, error) {
				gotActor = actor
				return domain.BlockedEntity{Id: 1, Kind: req.Kind, Value: req.Value, Reason: req.Reason, BlockedBy: actor}, nil
			},
		}

		req := adminRequest(t, http.MethodPost, "/api/admin/blocklist", requestBody)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "root", gotActor, "actor comes from the admin token")
	})

	t.Run("unknown entity type fails validation", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{}

		body := []byte(`{"entity_type": "wallet", "entity_value": "x"}`)
		req := adminRequest(t, http.MethodPost, "/api/admin/blocklist", body)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate entry is 409", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{
			BlockFunc: func(req domain.BlockRequest, actor string) (domain.BlockedEntity, error) {
				return domain.BlockedEntity{}, internal_errors.Conflict("Entity already blocked")
			},
		}

		req := adminRequest(t, http.MethodPost, "/api/admin/blocklist", requestBody)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUnblockEntityHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodDelete, "/api/admin/blocklist/{id}", h.UnblockEntity)

	t.Run("entry removed", func(t *testing.T) {
		var gotId int64
		h.blocklist = &MockBlocklistService{
			UnblockFunc: func(id int64) error {
				gotId = id
				return nil
			},
		}

		req := adminRequest(t, http.MethodDelete, "/api/admin/blocklist/9", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, int64(9), gotId)
	})

	t.Run("missing entry is 404", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{
			UnblockFunc: func(id int64) error {
				return internal_errors.NotFound("Blocklist entry not found")
			},
		}

		req := adminRequest(t, http.MethodDelete, "/api/admin/blocklist/9", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSuspiciousReportsHandlers(t *testing.T) {
	h := &Handler{cfg: testConfig()}

	t.Run("suspicious ips", func(t *testing.T) {
		router := adminRouter(http.MethodGet, "/api/admin/reports/suspicious-ips", h.SuspiciousIPs)
		h.activity = &MockActivityService{
			SuspiciousIPsFunc: func(limit, offset int) ([]domain.SuspiciousIP, error) {
				return []domain.SuspiciousIP{{IP: "1.2.3.4", UniqueUsers: 4, Events: 17, LastActivity: time.Now()}}, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/reports/suspicious-ips", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var ips []domain.SuspiciousIP
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ips))
		require.Len(t, ips, 1)
		assert.Equal(t, 4, ips[0].UniqueUsers)
	})

	t.Run("suspicious users", func(t *testing.T) {
		router := adminRouter(http.MethodGet, "/api/admin/reports/suspicious-users", h.SuspiciousUsers)
		h.activity = &MockActivityService{
			SuspiciousUsersFunc: func(limit, offset int) ([]domain.SuspiciousUser, error) {
				return []domain.SuspiciousUser{{UserId: 7, Username: "alice", UniqueIPs: 6}}, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/reports/suspicious-users", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var users []domain.SuspiciousUser
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, 6, users[0].UniqueIPs)
	})

	t.Run("ip activity passes the path variable through", func(t *testing.T) {
		router := adminRouter(http.MethodGet, "/api/admin/reports/ip/{ip}/activity", h.IPActivity)
		var gotIP string
		h.activity = &MockActivityService{
			IPActivityFunc: func(ip string, limit int) ([]domain.ActivityRecord, error) {
				gotIP = ip
				return nil, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/reports/ip/1.2.3.4/activity", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "1.2.3.4", gotIP)
	})
}

func TestUpdateFeePolicyHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodPut, "/api/admin/fee-settings", h.UpdateFeePolicy)
	requestBody := []byte(`{"fee_type": "percentage", "fee_amount": "2.5", "enabled": true}`)

	t.Run("policy updated with actor", func(t *testing.T) {
		var gotActor string
		var gotUpdate domain.FeePolicyUpdate
		h.fee = &MockFeeService{
			UpdatePolicyFunc: func(update domain.FeePolicyUpdate, actor string) (domain.FeePolicy, error) {
				gotActor = actor
				gotUpdate = update
				return domain.FeePolicy{Kind: update.Kind, UpdatedBy: actor}, nil
			},
		}

		req := adminRequest(t, http.MethodPut, "/api/admin/fee-settings", requestBody)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "root", gotActor)
		assert.Equal(t, domain.FeePercentage, gotUpdate.Kind)
		assert.Equal(t, "2.5", gotUpdate.Amount)
	})

	t.Run("invalid fee type fails validation", func(t *testing.T) {
		h.fee = &MockFeeService{}

		body := []byte(`{"fee_type": "tiered", "fee_amount": "1"}`)
		req := adminRequest(t, http.MethodPut, "/api/admin/fee-settings", body)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAdminUsersHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodGet, "/api/admin/users", h.AdminUsers)

	t.Run("search and paging from query", func(t *testing.T) {
		var gotSearch string
		var gotLimit, gotOffset int
		h.admin = &MockAdminService{
			UsersFunc: func(search string, limit, offset int) ([]domain.User, error) {
				gotSearch, gotLimit, gotOffset = search, limit, offset
				return []domain.User{{Id: 1, Username: "alice"}}, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/users?search=ali&limit=10&offset=20", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ali", gotSearch)
		assert.Equal(t, 10, gotLimit)
		assert.Equal(t, 20, gotOffset)
	})

	t.Run("defaults when query is empty", func(t *testing.T) {
		var gotLimit int
		h.admin = &MockAdminService{
			UsersFunc: func(search string, limit, offset int) ([]domain.User, error) {
				gotLimit = limit
				return nil, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/users", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 50, gotLimit)
	})
}

func TestAdminUserDetailsHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodGet, "/api/admin/users/{id}", h.AdminUserDetails)

	t.Run("details for existing user", func(t *testing.T) {
		h.admin = &MockAdminService{
			UserDetailsFunc: func(id domain.UserId) (domain.UserDetails, error) {
				return domain.UserDetails{
					User:    domain.User{Id: id, Username: "alice"},
					Wallets: []domain.Wallet{{Id: 1, UserId: id, Address: "AegisDetailsAddr"}},
				}, nil
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/users/42", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var details domain.UserDetails
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &details))
		assert.Equal(t, domain.UserId(42), details.User.Id)
		require.Len(t, details.Wallets, 1)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		h.admin = &MockAdminService{
			UserDetailsFunc: func(id domain.UserId) (domain.UserDetails, error) {
				return domain.UserDetails{}, internal_errors.NotFound("User not found")
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/users/42", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		h.admin = &MockAdminService{}

		req := adminRequest(t, http.MethodGet, "/api/admin/users/abc", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDashboardHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodGet, "/api/admin/dashboard", h.Dashboard)
	h.admin = &MockAdminService{
		DashboardFunc: func() (domain.DashboardStats, error) {
			return domain.DashboardStats{Users: 10, BlockedUsers: 2, Wallets: 13, Transactions: 40, Transactions24h: 4}, nil
		},
	}

	req := adminRequest(t, http.MethodGet, "/api/admin/dashboard", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, int64(10), stats.Users)
	assert.Equal(t, int64(4), stats.Transactions24h)
}

func TestAdminTransactionsHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodGet, "/api/admin/transactions", h.AdminTransactions)

	var gotLimit, gotOffset int
	h.admin = &MockAdminService{
		TransactionLogsFunc: func(limit, offset int) ([]domain.TransactionLog, error) {
			gotLimit, gotOffset = limit, offset
			return []domain.TransactionLog{{Id: 1, UserId: 7, Txid: "txid1"}}, nil
		},
	}

	req := adminRequest(t, http.MethodGet, "/api/admin/transactions?limit=25&offset=50", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 50, gotOffset)
	var logs []domain.TransactionLog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "txid1", logs[0].Txid)
}

func TestUnblockEntityByValueHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodDelete, "/api/admin/blocklist", h.UnblockEntityByValue)

	t.Run("pair from query reaches the service", func(t *testing.T) {
		var gotKind domain.EntityKind
		var gotValue string
		h.blocklist = &MockBlocklistService{
			UnblockByValueFunc: func(kind domain.EntityKind, value string) error {
				gotKind, gotValue = kind, value
				return nil
			},
		}

		req := adminRequest(t, http.MethodDelete, "/api/admin/blocklist?entity_type=ip&entity_value=1.2.3.4", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.EntityIP, gotKind)
		assert.Equal(t, "1.2.3.4", gotValue)
	})

	t.Run("unknown pair is 404", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{
			UnblockByValueFunc: func(kind domain.EntityKind, value string) error {
				return internal_errors.NotFound("Blocklist entry not found")
			},
		}

		req := adminRequest(t, http.MethodDelete, "/api/admin/blocklist?entity_type=ip&entity_value=9.9.9.9", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad kind surfaces service validation", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{
			UnblockByValueFunc: func(kind domain.EntityKind, value string) error {
				return internal_errors.Validation("Unknown entity type")
			},
		}

		req := adminRequest(t, http.MethodDelete, "/api/admin/blocklist?entity_type=phone&entity_value=123", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBlocklistCheckHandler(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	router := adminRouter(http.MethodGet, "/api/admin/blocklist/check", h.BlocklistCheck)

	t.Run("blocked entity reported", func(t *testing.T) {
		var gotKind domain.EntityKind
		var gotValue string
		h.blocklist = &MockBlocklistService{
			StatusFunc: func(kind domain.EntityKind, value string) domain.BlockStatus {
				gotKind, gotValue = kind, value
				return domain.Blocked
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/blocklist/check?entity_type=ip&entity_value=1.2.3.4", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.EntityIP, gotKind)
		assert.Equal(t, "1.2.3.4", gotValue)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, domain.Blocked.String(), body["status"])
	})

	t.Run("clean entity reported", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{
			StatusFunc: func(kind domain.EntityKind, value string) domain.BlockStatus {
				return domain.NotBlocked
			},
		}

		req := adminRequest(t, http.MethodGet, "/api/admin/blocklist/check?entity_type=username&entity_value=alice", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, domain.NotBlocked.String(), body["status"])
	})

	t.Run("unknown kind is 400", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{}

		req := adminRequest(t, http.MethodGet, "/api/admin/blocklist/check?entity_type=phone&entity_value=123", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing value is 400", func(t *testing.T) {
		h.blocklist = &MockBlocklistService{}

		req := adminRequest(t, http.MethodGet, "/api/admin/blocklist/check?entity_type=ip", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
