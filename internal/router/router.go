package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware/metrics"
	rl "github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware/ratelimiter"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/setup"
)

// New creates and configures a new mux router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that subrouter
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Enable gzip compression for all responses
	r.Use(handlers.CompressHandler)

	// setup CORS for the mobile clients and the admin panel
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(deps.Config.Public.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	))

	r.Use(mw.SecurityHeaders(false))
	r.Use(metrics.Middleware)

	// Add a wildcard OPTIONS handler to avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	h := deps.Handler
	authMw := deps.AuthMiddleware

	api := r.PathPrefix("/api").Subrouter()

	// One shared bucket for everything under /api, on top of the
	// per-endpoint limiters below
	api.Use(mw.GlobalRateLimit(rl.ApiLimiter))

	// Unauthenticated service endpoints
	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/info", h.Info).Methods("GET")
	api.HandleFunc("/blockchain/info", h.BlockchainInfo).Methods("GET")

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(mw.TrackActivity(deps.Activity, "auth"))

	authRegister := auth.NewRoute().Subrouter()
	authRegister.Use(mw.RateLimit(rl.NewKeyedRateLimiter(1.0/10.0, 3, 1*time.Hour), mw.GetIP))
	authRegister.HandleFunc("/register", h.Register).Methods("POST")

	authLogin := auth.NewRoute().Subrouter()
	authLogin.Use(mw.RateLimit(rl.LoginLimiter, mw.GetIP))
	authLogin.HandleFunc("/login", h.Login).Methods("POST")

	// Admin login sits outside the AdminOnly subrouter so it is reachable
	// without a token, but keeps the login rate limit
	adminLogin := api.NewRoute().Subrouter()
	adminLogin.Use(mw.TrackActivity(deps.Activity, "auth"))
	adminLogin.Use(mw.RateLimit(rl.LoginLimiter, mw.GetIP))
	adminLogin.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")

	// Logged-in user routes
	loggedIn := api.NewRoute().Subrouter()
	loggedIn.Use(authMw.NeedAuth())
	loggedIn.Use(mw.TrackActivity(deps.Activity, "api"))
	loggedIn.Use(mw.RateLimit(rl.NewKeyedRateLimiter(100, 100, 1*time.Hour), mw.GetUsernameFromContext))

	loggedIn.HandleFunc("/auth/profile", h.Profile).Methods("GET")
	loggedIn.HandleFunc("/auth/refresh", h.Refresh).Methods("POST")
	loggedIn.HandleFunc("/auth/logout", h.Logout).Methods("POST")

	loggedIn.HandleFunc("/wallet", h.LinkWallet).Methods("POST")
	loggedIn.HandleFunc("/wallet", h.Wallets).Methods("GET")
	loggedIn.HandleFunc("/wallet/validate/{address}", h.ValidateWalletAddress).Methods("GET")
	loggedIn.HandleFunc("/wallet/transaction/{txid}", h.TransactionStatus).Methods("GET")
	loggedIn.HandleFunc("/wallet/{address}", h.UnlinkWallet).Methods("DELETE")
	loggedIn.HandleFunc("/wallet/{address}/balance", h.WalletBalance).Methods("GET")
	loggedIn.HandleFunc("/wallet/{address}/label", h.RelabelWallet).Methods("PUT")
	loggedIn.HandleFunc("/wallet/{address}/transactions", h.WalletTransactions).Methods("GET")

	loggedIn.HandleFunc("/transaction/fee-settings", h.FeeSettings).Methods("GET")
	loggedIn.HandleFunc("/transaction/estimate-fee", h.EstimateFee).Methods("GET")
	loggedIn.HandleFunc("/transaction/history", h.TransactionHistory).Methods("GET")
	loggedIn.HandleFunc("/transaction/{txid}/status", h.TransactionStatus).Methods("GET")

	// Broadcast gets its own, tighter bucket
	loggedIn.Handle("/transaction/broadcast",
		mw.RateLimit(rl.BroadcastLimiter, mw.GetUsernameFromContext)(http.HandlerFunc(h.Broadcast))).Methods("POST")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMw.AdminOnly())
	admin.Use(mw.TrackActivity(deps.Activity, "admin"))

	admin.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	admin.HandleFunc("/transactions", h.AdminTransactions).Methods("GET")

	admin.HandleFunc("/users", h.AdminUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", h.AdminUserDetails).Methods("GET")
	admin.HandleFunc("/users/{id}/block", h.BlockUser).Methods("POST")
	admin.HandleFunc("/users/{id}/unblock", h.UnblockUser).Methods("POST")
	admin.HandleFunc("/users/{id}/activity", h.UserActivity).Methods("GET")

	admin.HandleFunc("/blocklist", h.BlockEntity).Methods("POST")
	admin.HandleFunc("/blocklist", h.BlockedEntities).Methods("GET")
	admin.HandleFunc("/blocklist", h.UnblockEntityByValue).Methods("DELETE")
	admin.HandleFunc("/blocklist/check", h.BlocklistCheck).Methods("GET")
	admin.HandleFunc("/blocklist/stats", h.BlocklistStats).Methods("GET")
	admin.HandleFunc("/blocklist/{id}", h.UnblockEntity).Methods("DELETE")

	admin.HandleFunc("/reports/suspicious-ips", h.SuspiciousIPs).Methods("GET")
	admin.HandleFunc("/reports/suspicious-users", h.SuspiciousUsers).Methods("GET")
	admin.HandleFunc("/reports/ip/{ip}/activity", h.IPActivity).Methods("GET")

	admin.HandleFunc("/fee-settings", h.FeeSettings).Methods("GET")
	admin.HandleFunc("/fee-settings", h.UpdateFeePolicy).Methods("PUT")

	return r
}
