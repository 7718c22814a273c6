package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/cfg"
	"github.com/kardiachain/crowdfund-backend/db"
	"github.com/kardiachain/crowdfund-backend/evm"
	"github.com/kardiachain/crowdfund-backend/handler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		panic(err.Error())
	}

	runtime.GOMAXPROCS(runtime.NumCPU())
	serviceCfg, err := cfg.New()
	if err != nil {
		panic(err.Error())
	}

	logger, err := newLogger(serviceCfg)
	if err != nil {
		panic("cannot init logger")
	}
	logger = logger.With(zap.String("service", "watcher"))

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	waitExit := make(chan bool)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			cancel()
			waitExit <- true
		}
	}()

	if serviceCfg.StorageDriver == "" {
		logger.Panic("watcher needs STORAGE_DRIVER")
	}
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

	nodes, err := evm.NewWrapper(ctx, evm.WrapperConfig{URLs: serviceCfg.ChainRPCURLs, Logger: logger})
	if err != nil {
		logger.Panic("cannot connect rpc nodes", zap.Error(err))
	}
	defer nodes.Close()
	if err := nodes.Select(serviceCfg.RequiredChainID); err != nil {
		logger.Panic("required chain not configured", zap.Uint64("chainId", serviceCfg.RequiredChainID), zap.Error(err))
	}

	contract, err := evm.NewContract(evm.ContractConfig{
		Address: serviceCfg.CampaignContractAddr,
		Nodes:   nodes,
		Logger:  logger,
	})
	if err != nil {
		logger.Panic("cannot create contract client", zap.Error(err))
	}
	contract.Load(ctx)
	if err := contract.WaitLoaded(ctx); err != nil {
		logger.Panic("contract not available", zap.Error(err))
	}

	s := &syncer{
		ledger:   contract,
		store:    dbClient,
		donors:   handler.NewDonorAggregator(contract, dbClient, logger),
		poolSize: serviceCfg.WorkerPoolSize,
		logger:   logger,
	}
	go s.watch(ctx, serviceCfg.SyncInterval)
	<-waitExit
}
