package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sitedeploy/internal/app"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/system"
	"sitedeploy/internal/ui"
)

func main() {
	log := logger.NewColoredLogger(logger.WithLevel(logLevel()))

	if os.Geteuid() != 0 {
		fail(log, apperrors.EnvironmentError(
			apperrors.CodeEnvPrivilege,
			"this tool must run as root",
			nil,
		).WithHint("re-run with: sudo sitedeploy"))
	}

	cfg, err := system.LoadConfig()
	if err != nil {
		fail(log, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn("Received %s, shutting down", sig)
		cancel()
	}()

	if err := app.New(cfg, log).Run(ctx); err != nil {
		fail(log, err)
	}
}

func fail(log logger.Logger, err error) {
	log.Error("%v", err)
	if hint := apperrors.HintFor(err); hint != "" {
		ui.NewPrinter().PrintHint(hint)
	}
	os.Exit(apperrors.ExitCodeFor(err))
}

func logLevel() logger.Level {
	if os.Getenv("SITEDEPLOY_DEBUG") != "" {
		return logger.LevelDebug
	}
	return logger.LevelInfo
}
