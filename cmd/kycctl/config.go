package main

import (
	"os"

	"github.com/ucardlabs/ucard-admin/internal/config"
	"github.com/ucardlabs/ucard-admin/internal/logger"
)

// loadConfig читает конфигурацию сервера; логи CLI идут в stderr, чтобы не
// смешиваться с выводом команд.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	logger.SetTextFormatter()
	logger.SetOutput(os.Stderr)
	return cfg, nil
}
