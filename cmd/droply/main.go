package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/zamdevio/droply/pkg/config"
	"github.com/zamdevio/droply/pkg/logging"
)

func main() {
	fs := afero.NewOsFs()
	logger := logging.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, err := config.LoadFromWorkingDir(fs)
	if err != nil {
		logger.Warn("could not load configuration, using defaults", "err", err)
		settings = config.Default()
	}

	app := &App{FS: fs, Logger: logger, Settings: settings}
	if err := NewRootCommand(ctx, app).Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(exitCode(err))
	}
}
