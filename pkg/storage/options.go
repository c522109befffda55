package storage

import (
	"time"

	"go.uber.org/zap"
)

type StorageOption func(*Engine)

// WithDataFile sets the snapshot file. An empty path keeps everything in memory.
func WithDataFile(path string) StorageOption {
	return func(engine *Engine) {
		engine.dataFile = path
	}
}

func WithBackgroundSave(interval time.Duration) StorageOption {
	return func(engine *Engine) {
		engine.backgroundSave = interval > 0
		engine.saveInterval = interval
	}
}

// WithTransactionSave enables saving after every write (default: true)
func WithTransactionSave(enabled bool) StorageOption {
	return func(engine *Engine) {
		engine.transactionSave = enabled
	}
}

func WithLogger(logger *zap.Logger) StorageOption {
	return func(engine *Engine) {
		engine.logger = logger
	}
}
