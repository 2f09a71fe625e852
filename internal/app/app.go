package app

import (
	"context"
	"os"

	"sitedeploy/internal/backup"
	"sitedeploy/internal/certificate"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/fetcher"
	"sitedeploy/internal/firewall"
	"sitedeploy/internal/input"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/pkgmgr"
	"sitedeploy/internal/preflight"
	"sitedeploy/internal/system"
	"sitedeploy/internal/ui"
	"sitedeploy/internal/verifier"
	"sitedeploy/internal/webserver"
)

// App wires the provisioning workflow together: preflight, input collection,
// then the execution pipeline. All interaction happens before the pipeline
// starts; execution never prompts.
type App struct {
	config   *system.Config
	logger   logger.Logger
	console  *ui.Console
	printer  *ui.Printer
	prompter input.Prompter

	packages     *pkgmgr.Manager
	backups      *backup.Manager
	fetch        *fetcher.Fetcher
	configurator *webserver.Configurator
	certs        *certificate.Manager
	fw           *firewall.Opener
	probe        *verifier.Verifier
}

// New assembles the application from the detected system configuration.
func New(cfg *system.Config, log logger.Logger) *App {
	console := ui.NewConsole(log, os.Stdout)
	exec := pkgmgr.SystemExecutor{}
	packages := pkgmgr.NewManager(exec)
	backups := backup.NewManager(cfg.Layout.BackupRoot, cfg.Layout.BackupKeep, log)

	return &App{
		config:       cfg,
		logger:       log,
		console:      console,
		printer:      ui.NewPrinter(),
		prompter:     input.NewTerminalPrompter(),
		packages:     packages,
		backups:      backups,
		fetch:        fetcher.New(exec, log),
		configurator: webserver.NewConfigurator(cfg.Layout, exec, backups, log),
		certs:        certificate.NewManager(cfg.Layout, exec, packages, backups, log),
		fw:           firewall.NewOpener(log),
		probe:        verifier.New(cfg.Layout.ProbeTimeout.Std(), log),
	}
}

// Run executes the full workflow and returns the error that determines the
// process exit code.
func (a *App) Run(ctx context.Context) error {
	a.printer.PrintBanner()

	result, err := a.runPreflight()
	a.console.WriteLine("Preflight checks: %s", result)
	if err != nil {
		return err
	}

	req, err := a.collectInput()
	if err != nil {
		return err
	}

	return a.execute(ctx, req)
}

func (a *App) runPreflight() (preflight.Result, error) {
	checker := preflight.NewChecker(a.config, a.logger, a.printer, a.prompter.Confirm)
	return checker.Run()
}

func (a *App) collectInput() (*input.Request, error) {
	collector := input.NewCollector(a.prompter, a.logger, a.configurator.SiteExists)
	return collector.Collect()
}

func cancelled(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return apperrors.EnvironmentError(
		apperrors.CodeEnvGeneric,
		"deployment interrupted",
		ctx.Err(),
	).WithModule("app")
}
