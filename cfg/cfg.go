/*
 *  Copyright 2018 KardiaChain
 *  This file is part of the go-kardia library.
 *
 *  The go-kardia library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  The go-kardia library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 *  GNU Lesser General Public License for more details.
 *
 *  You should have received a copy of the GNU Lesser General Public License
 *  along with the go-kardia library. If not, see <http://www.gnu.org/licenses/>.
 */

// Package cfg
package cfg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kardiachain/crowdfund-backend/types"
)

const (
	ModeDev        = "dev"
	ModeProduction = "prod"
)

type Config struct {
	ServerMode string
	Port       string

	LogLevel  string
	SentryDSN string

	ChainRPCURLs         []string
	RequiredChainID      uint64
	CampaignContractAddr string
	WalletPrivateKey     string
	ReceiptTimeout       time.Duration

	CacheEngine      string
	CacheURL         string
	CacheDB          int
	CacheIsFlush     bool
	CacheExpiredTime time.Duration

	StorageDriver  string
	StorageURI     string
	StorageDB      string
	StorageMinConn int
	StorageMaxConn int
	StorageIsFlush bool

	AutosaveInterval      time.Duration
	FeeDebounce           time.Duration
	MaxTarget             decimal.Decimal
	ImageCheckTimeout     time.Duration
	ImageAllowPrivate     bool
	DonationRedirectDelay time.Duration
	CreationRedirectDelay time.Duration
	WorkerPoolSize        int
	SessionIdleTimeout    time.Duration

	SyncInterval time.Duration
}

func New() (Config, error) {
	var chainRPCURLs []string
	chainRPCURLsStr := os.Getenv("CHAIN_RPC_URLS")
	if chainRPCURLsStr == "" {
		return Config{}, errors.New("missing RPC URLs in config")
	}
	for _, url := range strings.Split(chainRPCURLsStr, ",") {
		if url = strings.TrimSpace(url); url != "" {
			chainRPCURLs = append(chainRPCURLs, url)
		}
	}

	contractAddr := os.Getenv("CAMPAIGN_CONTRACT_ADDR")
	if contractAddr == "" {
		return Config{}, errors.New("missing campaign contract address in config")
	}

	requiredChainIDStr := os.Getenv("REQUIRED_CHAIN_ID")
	requiredChainID, err := strconv.ParseUint(requiredChainIDStr, 10, 64)
	if err != nil {
		requiredChainID = types.SepoliaChainID
	}

	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		cacheDB = 0
	}

	cacheIsFlushStr := os.Getenv("CACHE_IS_FLUSH")
	cacheIsFlush, err := strconv.ParseBool(cacheIsFlushStr)
	if err != nil {
		cacheIsFlush = false
	}

	storageMinConnStr := os.Getenv("STORAGE_MIN_CONN")
	storageMinConn, err := strconv.Atoi(storageMinConnStr)
	if err != nil {
		storageMinConn = 8
	}

	storageMaxConnStr := os.Getenv("STORAGE_MAX_CONN")
	storageMaxConn, err := strconv.Atoi(storageMaxConnStr)
	if err != nil {
		storageMaxConn = 32
	}

	storageIsFlushStr := os.Getenv("STORAGE_IS_FLUSH")
	storageIsFlush, err := strconv.ParseBool(storageIsFlushStr)
	if err != nil {
		storageIsFlush = false
	}

	maxTargetStr := os.Getenv("MAX_TARGET")
	if maxTargetStr == "" {
		maxTargetStr = "1000"
	}
	maxTarget, err := decimal.NewFromString(maxTargetStr)
	if err != nil || !maxTarget.IsPositive() {
		return Config{}, fmt.Errorf("invalid MAX_TARGET %q", maxTargetStr)
	}

	imageAllowPrivate, _ := strconv.ParseBool(os.Getenv("IMAGE_ALLOW_PRIVATE"))

	workerPoolSizeStr := os.Getenv("WORKER_POOL_SIZE")
	workerPoolSize, err := strconv.Atoi(workerPoolSizeStr)
	if err != nil {
		workerPoolSize = 8
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	cfg := Config{
		ServerMode: os.Getenv("SERVER_MODE"),
		Port:       port,
		LogLevel:   os.Getenv("LOG_LEVEL"),
		SentryDSN:  os.Getenv("SENTRY_DSN"),

		ChainRPCURLs:         chainRPCURLs,
		RequiredChainID:      requiredChainID,
		CampaignContractAddr: contractAddr,
		WalletPrivateKey:     os.Getenv("WALLET_PRIVATE_KEY"),
		ReceiptTimeout:       durationEnv("RECEIPT_TIMEOUT", 3*time.Minute),

		CacheEngine:      os.Getenv("CACHE_ENGINE"),
		CacheURL:         os.Getenv("CACHE_URI"),
		CacheDB:          cacheDB,
		CacheIsFlush:     cacheIsFlush,
		CacheExpiredTime: durationEnv("CACHE_EXPIRED_TIME", 30*time.Second),

		StorageDriver:  os.Getenv("STORAGE_DRIVER"),
		StorageURI:     os.Getenv("STORAGE_URI"),
		StorageDB:      os.Getenv("STORAGE_DB"),
		StorageMinConn: storageMinConn,
		StorageMaxConn: storageMaxConn,
		StorageIsFlush: storageIsFlush,

		AutosaveInterval:      durationEnv("AUTOSAVE_INTERVAL", 30*time.Second),
		FeeDebounce:           durationEnv("FEE_DEBOUNCE", time.Second),
		MaxTarget:             maxTarget,
		ImageCheckTimeout:     durationEnv("IMAGE_CHECK_TIMEOUT", 10*time.Second),
		ImageAllowPrivate:     imageAllowPrivate,
		DonationRedirectDelay: durationEnv("DONATION_REDIRECT_DELAY", 2*time.Second),
		CreationRedirectDelay: durationEnv("CREATION_REDIRECT_DELAY", 1500*time.Millisecond),
		WorkerPoolSize:        workerPoolSize,
		SessionIdleTimeout:    durationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		SyncInterval: durationEnv("SYNC_INTERVAL", 15*time.Second),
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
