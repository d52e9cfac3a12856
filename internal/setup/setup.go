package setup

import (
	"context"

	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/config"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/handler"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/jwt"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/middleware"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/rpc"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/service"
	"github.com/deeznutsjuhan/aegisum-mobile-wallet/internal/storage/pg"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	Activity       *service.Activity
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	node := rpc.New(cfg.Private.Rpc, cfg.Public.RpcTimeout)
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	access := service.NewAccess(storage, &cfg.Public)
	blocklist := service.NewBlocklist(storage)
	auth := service.NewAuth(storage, access, blocklist, jwtService, &cfg.Public)
	fee := service.NewFee(storage)
	wallet := service.NewWallet(storage, node, &cfg.Public)
	transaction := service.NewTransaction(storage, node, access, fee)
	activity := service.NewActivity(storage, &cfg.Public)
	admin := service.NewAdmin(storage, jwtService, cfg.Private.Admin)
	nodeInfo := service.NewNode(node)

	h := handler.New(auth, wallet, transaction, fee, blocklist, activity, admin, nodeInfo, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: middleware.NewAuth(jwtService, access),
		Activity:       activity,
	}, nil
}
