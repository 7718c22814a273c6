// Package main
package main

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kardiachain/crowdfund-backend/cfg"
)

const serviceName = "crowdfund-api"

// Context fields promoted to sentry tags so events can be grouped per draft
// session or campaign. Other fields land in Extra.
var sentryTags = map[string]bool{
	"service":    true,
	"component":  true,
	"method":     true,
	"session":    true,
	"campaignId": true,
	"chainId":    true,
}

func newLogger(sCfg cfg.Config) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	if sCfg.ServerMode == cfg.ModeDev {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logCfg.Level.SetLevel(parseLevel(sCfg.LogLevel))

	// Production only reports warnings and above.
	reportLevel := zapcore.DebugLevel
	if sCfg.ServerMode == cfg.ModeProduction {
		reportLevel = zapcore.WarnLevel
	}
	reporter := zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &sentryCore{
			LevelEnabler: reportLevel,
			capture: func(e *sentry.Event) {
				sentry.CaptureEvent(e)
			},
		})
	})

	return logCfg.Build(reporter, zap.Fields(
		zap.String("service", serviceName),
		zap.Uint64("chainId", sCfg.RequiredChainID),
	))
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// sentryCore forwards log entries to sentry together with the fields
// accumulated through logger.With.
type sentryCore struct {
	zapcore.LevelEnabler
	fields  []zapcore.Field
	capture func(*sentry.Event)
}

func (c *sentryCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field{}, c.fields...), fields...)
	return &clone
}

func (c *sentryCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *sentryCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	c.capture(sentryEvent(entry, all))
	return nil
}

func (c *sentryCore) Sync() error {
	return nil
}

func sentryEvent(entry zapcore.Entry, fields []zapcore.Field) *sentry.Event {
	e := sentry.NewEvent()
	e.Message = entry.Message
	e.Logger = entry.LoggerName
	e.Level = sentryLevel(entry.Level)
	e.Tags = make(map[string]string)
	e.Extra = make(map[string]interface{})

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	for k, v := range enc.Fields {
		if sentryTags[k] {
			e.Tags[k] = fmt.Sprint(v)
			continue
		}
		e.Extra[k] = v
	}
	return e
}

func sentryLevel(lvl zapcore.Level) sentry.Level {
	switch lvl {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	default:
		return sentry.LevelFatal
	}
}
