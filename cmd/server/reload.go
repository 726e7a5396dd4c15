package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"observer-console.backend/pkg/logger"
)

var (
	reloadDotenv  = godotenv.Overload
	reloadSignals = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGHUP)
		return ch, func() { signal.Stop(ch) }
	}
)

// keyRotator is the part of the field keyring a reload touches
type keyRotator interface {
	Rotate(newKeyHex string) error
	ActiveKeyID() string
}

// watchKeyReloads re-reads the field encryption key on every signal until ctx ends
func watchKeyReloads(ctx context.Context, signals <-chan os.Signal, keyring keyRotator) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			reloadFieldKey(ctx, keyring)
		}
	}
}

// reloadFieldKey promotes FIELD_ENCRYPTION_KEY when it changed. Values sealed with
// the previous key stay readable. Reports whether the active key changed.
func reloadFieldKey(ctx context.Context, keyring keyRotator) bool {
	if err := reloadDotenv(); err != nil {
		logger.Debug(ctx, "No .env file to reload", zap.Error(err))
	}

	key := loadCfg().Security.FieldEncryptionKey
	if key == "" {
		logger.Warn(ctx, "FIELD_ENCRYPTION_KEY is empty after reload; keeping the active key")
		return false
	}

	before := keyring.ActiveKeyID()
	if err := keyring.Rotate(key); err != nil {
		logger.Error(ctx, "Rejected reloaded field encryption key", zap.Error(err))
		return false
	}
	after := keyring.ActiveKeyID()
	if after == before {
		logger.Info(ctx, "Field encryption key unchanged", zap.String("key_id", after))
		return false
	}
	logger.Info(ctx, "Field encryption key rotated",
		zap.String("previous_key_id", before),
		zap.String("key_id", after),
	)
	return true
}
