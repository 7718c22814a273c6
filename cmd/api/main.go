package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/api"
	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/cfg"
	"github.com/kardiachain/crowdfund-backend/db"
	"github.com/kardiachain/crowdfund-backend/evm"
	"github.com/kardiachain/crowdfund-backend/external"
	"github.com/kardiachain/crowdfund-backend/handler"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		panic(err.Error())
	}

	serviceCfg, err := cfg.New()
	if err != nil {
		panic(err.Error())
	}

	logger, err := newLogger(serviceCfg)
	if err != nil {
		panic("cannot init logger")
	}
	logger.Info("Start API server...")

	defer func() {
		if err := recover(); err != nil {
			logger.Error("cannot recover")
		}
		if err := logger.Sync(); err != nil {
			logger.Error("cannot sync log")
		}
	}()

	if err := setupSentry(serviceCfg); err != nil {
		panic(err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodes, err := evm.NewWrapper(ctx, evm.WrapperConfig{URLs: serviceCfg.ChainRPCURLs, Logger: logger})
	if err != nil {
		logger.Panic("cannot connect rpc nodes", zap.Error(err))
	}
	defer nodes.Close()

	wallet := evm.NewKeyWallet(evm.WalletConfig{
		PrivateKey: serviceCfg.WalletPrivateKey,
		Nodes:      nodes,
		Logger:     logger,
	})
	contract, err := evm.NewContract(evm.ContractConfig{
		Address:        serviceCfg.CampaignContractAddr,
		Nodes:          nodes,
		Signer:         wallet,
		ReceiptTimeout: serviceCfg.ReceiptTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Panic("cannot create contract client", zap.Error(err))
	}
	contract.Load(ctx)

	cacheAdapter := cache.Adapter(serviceCfg.CacheEngine)
	if cacheAdapter == "" {
		cacheAdapter = cache.MemoryAdapter
	}
	cacheClient, err := cache.New(cache.Config{
		Adapter:            cacheAdapter,
		URL:                serviceCfg.CacheURL,
		DB:                 serviceCfg.CacheDB,
		IsFlush:            serviceCfg.CacheIsFlush,
		DefaultExpiredTime: serviceCfg.CacheExpiredTime,
		Logger:             logger,
	})
	if err != nil {
		logger.Panic("cannot create cache client", zap.Error(err))
	}

	var readModel handler.ReadModel
	if serviceCfg.StorageDriver != "" {
		dbClient, err := db.NewClient(db.Config{
			DbAdapter: db.Adapter(serviceCfg.StorageDriver),
			DbName:    serviceCfg.StorageDB,
			URL:       serviceCfg.StorageURI,
			MinConn:   serviceCfg.StorageMinConn,
			MaxConn:   serviceCfg.StorageMaxConn,
			FlushDB:   serviceCfg.StorageIsFlush,
			Logger:    logger,
		})
		if err != nil {
			logger.Panic("cannot create db client", zap.Error(err))
		}
		readModel = dbClient
	}

	policy := validator.DefaultPolicy()
	policy.MaxTarget = serviceCfg.MaxTarget

	h, err := handler.New(handler.Config{
		Wallet: wallet,
		Ledger: contract,
		Images: external.NewImageChecker(external.ImageCheckerConfig{
			Timeout:      serviceCfg.ImageCheckTimeout,
			AllowPrivate: serviceCfg.ImageAllowPrivate,
			Logger:       logger,
		}),
		Network: network.New(network.Config{
			Provider:        wallet,
			RequiredChainID: serviceCfg.RequiredChainID,
			Logger:          logger,
		}),
		Validator:             validator.New(policy, time.Now),
		DB:                    readModel,
		Cache:                 cacheClient,
		AutosaveInterval:      serviceCfg.AutosaveInterval,
		FeeDebounce:           serviceCfg.FeeDebounce,
		CreationRedirectDelay: serviceCfg.CreationRedirectDelay,
		DonationRedirectDelay: serviceCfg.DonationRedirectDelay,
		PoolSize:              serviceCfg.WorkerPoolSize,
		SessionIdleTimeout:    serviceCfg.SessionIdleTimeout,
		Logger:                logger,
	})
	if err != nil {
		logger.Panic("cannot create handler", zap.Error(err))
	}
	defer h.Close()

	go func() {
		if err := contract.WaitLoaded(ctx); err != nil {
			logger.Error("Contract not available", zap.Error(err))
			return
		}
		donations, err := h.RefreshAllDonations(ctx)
		if err != nil {
			logger.Warn("cannot seed read model", zap.Error(err))
			return
		}
		logger.Info("Read model seeded", zap.Int("campaigns", len(donations)))
	}()

	srv := api.NewServer().SetHandler(h).SetLogger(logger)
	e := api.NewEcho(srv)
	go func() {
		if err := e.Start(":" + serviceCfg.Port); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("Shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("cannot shutdown server", zap.Error(err))
	}
}

func setupSentry(cfg cfg.Config) error {
	opts := sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.ServerMode,
	}
	if err := sentry.Init(opts); err != nil {
		return err
	}
	return nil
}
