package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Verbose bool // debug 级别
	DevMode bool // 控制台友好格式
}

// New 构建 zap logger
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.DevMode {
		config = zap.NewDevelopmentConfig()
	}
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop nil 时返回空 logger
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
