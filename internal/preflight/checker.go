package preflight

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"time"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/system"
	"sitedeploy/internal/ui"
)

// ConfirmFunc asks the operator a yes/no question during soft checks.
type ConfirmFunc func(question string) (bool, error)

// Result summarises a preflight run.
type Result struct {
	Passed int
	Total  int
}

// String renders the "N/8 passed" gate line.
func (r Result) String() string {
	return fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
}

type check struct {
	name string
	soft bool
	fn   func() error
}

// Checker runs the fixed environment check sequence. Hard failures abort
// before any host mutation; the two soft checks (port 80 occupancy,
// conflicting daemons) warn and require operator confirmation instead.
type Checker struct {
	config  *system.Config
	logger  logger.Logger
	printer *ui.Printer
	confirm ConfirmFunc

	// Seams for tests.
	geteuid       func() int
	httpClient    *http.Client
	listen        func(network, address string) (net.Listener, error)
	lookPath      func(file string) (string, error)
	serviceActive func(name string) bool
	diskAvailable func(path string) (uint64, error)
	memAvailable  func() (uint64, error)
}

// NewChecker constructs a preflight checker bound to the detected system config.
func NewChecker(cfg *system.Config, log logger.Logger, printer *ui.Printer, confirm ConfirmFunc) *Checker {
	return &Checker{
		config:        cfg,
		logger:        log,
		printer:       printer,
		confirm:       confirm,
		geteuid:       os.Geteuid,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		listen:        net.Listen,
		lookPath:      exec.LookPath,
		serviceActive: systemdServiceActive,
		diskAvailable: diskAvailableBytes,
		memAvailable:  memAvailableBytes,
	}
}

// Run executes all checks in order. The returned Result is valid even on
// error and reports how many checks passed before the failure.
func (c *Checker) Run() (Result, error) {
	checks := []check{
		{name: "Root privilege", fn: c.checkPrivilege},
		{name: "Network connectivity", fn: c.checkConnectivity},
		{name: "Package manager", fn: c.checkPackageManager},
		{name: "Disk space", fn: c.checkDiskSpace},
		{name: "Available memory", fn: c.checkMemory},
		{name: "Port 80 availability", soft: true, fn: c.checkPort80},
		{name: "Web server binary", fn: c.checkWebServerBinary},
		{name: "Conflicting daemons", soft: true, fn: c.checkConflictingDaemons},
	}

	result := Result{Total: len(checks)}

	for _, chk := range checks {
		err := chk.fn()
		if err == nil {
			result.Passed++
			c.print(chk.name, ui.CheckPassed)
			continue
		}

		if !chk.soft {
			c.print(chk.name, ui.CheckFailed)
			return result, c.wrap(chk.name, err)
		}

		c.print(chk.name, ui.CheckWarning)
		c.logger.Warn("%s: %v", chk.name, err)

		ok, confirmErr := c.confirm(fmt.Sprintf("%s — continue anyway?", chk.name))
		if confirmErr != nil {
			return result, confirmErr
		}
		if !ok {
			return result, apperrors.EnvironmentError(
				apperrors.CodeEnvPreflight,
				"aborted by operator after soft check warning",
				err,
			).WithModule("preflight").WithOperation("preflight." + chk.name)
		}

		result.Passed++
		c.print(chk.name, ui.CheckConfirmed)
	}

	c.logger.Info("Preflight checks: %s", result)
	return result, nil
}

func (c *Checker) print(name string, status ui.CheckStatus) {
	if c.printer != nil {
		c.printer.PrintCheck(name, status)
	}
}

func (c *Checker) wrap(name string, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	return apperrors.EnvironmentError(
		apperrors.CodeEnvPreflight,
		name+" check failed",
		err,
	).WithModule("preflight")
}
