// Package main
package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kardiachain/crowdfund-backend/cfg"
)

func newLogger(sCfg cfg.Config) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	if sCfg.ServerMode == cfg.ModeDev {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(sCfg.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}
	logCfg.Level.SetLevel(level)
	return logCfg.Build()
}
