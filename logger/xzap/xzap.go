package xzap

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	global *zap.Logger
)

type Config struct {
	Level string
	Mode  string // console / json
}

// SetUp 初始化全局 logger，重复调用只生效一次
func SetUp(cfg Config) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		level := zapcore.InfoLevel
		if cfg.Level != "" {
			if l, e := zapcore.ParseLevel(cfg.Level); e == nil {
				level = l
			}
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		if cfg.Mode == "console" {
			zc = zap.NewDevelopmentConfig()
			zc.Level = zap.NewAtomicLevelAt(level)
		}
		global, err = zc.Build(zap.AddCallerSkip(1))
	})
	return global, err
}

// WithContext 取带上下文的 logger；ctx 预留 trace 字段
func WithContext(ctx context.Context) *zap.Logger {
	if global == nil {
		global, _ = zap.NewProduction()
	}
	return global
}
