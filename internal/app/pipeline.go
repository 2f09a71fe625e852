package app

import (
	"context"
	"os"
	"os/user"
	"strconv"
	"time"

	"sitedeploy/internal/backup"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/fetcher"
	"sitedeploy/internal/history"
	"sitedeploy/internal/input"
	"sitedeploy/internal/verifier"
)

// step is one unit of the execution pipeline. Enhancement steps log their
// failure and let the run continue.
type step struct {
	name        string
	enhancement bool
	fn          func() error
}

// execute runs the post-collection pipeline: directories, packages,
// repository content, web server, firewall, certificate, verification.
func (a *App) execute(ctx context.Context, req *input.Request) error {
	started := time.Now()
	certIssued := false

	steps := []step{
		{name: "Preparing directories", fn: func() error {
			return a.prepareDirectories(req)
		}},
		{name: "Installing required packages", fn: a.packages.EnsureTools},
	}

	if req.HasRepository {
		steps = append(steps, step{name: "Cloning repository", fn: func() error {
			return a.fetch.Fetch(fetcher.Options{
				URL:          req.RepoURL,
				Private:      req.IsPrivate(),
				Username:     req.Username,
				Token:        req.Token,
				DocumentRoot: a.config.Layout.DocumentRoot(req.SafeName),
				OwnerUser:    a.config.InvokingUser,
				OwnerGroup:   a.config.Layout.WebServerGroup,
			})
		}})
	}

	steps = append(steps,
		step{name: "Writing site content", fn: func() error {
			return a.configurator.WritePlaceholder(req.Subdomain, req.SafeName)
		}},
		step{name: "Configuring web server", fn: func() error {
			return a.configurator.Configure(req.Subdomain, req.SafeName)
		}},
		step{name: "Opening firewall ports", enhancement: true, fn: func() error {
			if a.config.IsContainer() {
				a.logger.Info("Container environment detected, leaving the firewall to the host")
				return nil
			}
			return a.fw.EnsureWebPorts()
		}},
	)

	if req.EnableHTTPS {
		steps = append(steps, step{name: "Issuing certificate", enhancement: true, fn: func() error {
			err := a.certs.Issue(req.Subdomain, req.Email)
			certIssued = err == nil
			return err
		}})
	}

	for _, s := range steps {
		if err := cancelled(ctx); err != nil {
			return err
		}

		a.console.StartProgress(s.name)
		err := s.fn()
		a.console.StopProgress(s.name)

		if err == nil {
			a.console.Success("%s", s.name)
			continue
		}

		if s.enhancement {
			a.logger.Warn("%s skipped: %v", s.name, err)
			if hint := apperrors.HintFor(err); hint != "" {
				a.printer.PrintHint(hint)
			}
			continue
		}

		return err
	}

	return a.verify(req, certIssued, started)
}

// prepareDirectories creates the document root and every directory the later
// steps write into. Existing repository content is snapshotted before a
// fresh clone replaces it.
func (a *App) prepareDirectories(req *input.Request) error {
	layout := a.config.Layout
	docRoot := layout.DocumentRoot(req.SafeName)

	if req.HasRepository {
		if _, err := a.backups.Snapshot(backup.CategoryProject, docRoot); err != nil {
			return apperrors.EnvironmentError(
				apperrors.CodeEnvDirectory,
				"failed to back up existing site content",
				err,
			).WithModule("app").WithField("path", docRoot)
		}
		if err := os.RemoveAll(docRoot); err != nil {
			return apperrors.EnvironmentError(
				apperrors.CodeEnvDirectory,
				"failed to clear existing site content",
				err,
			).WithModule("app").WithField("path", docRoot)
		}
	}

	for _, dir := range []string{
		docRoot,
		layout.SitesAvailable,
		layout.SitesEnabled,
		layout.LogDir,
		layout.BackupRoot,
		layout.StateDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.EnvironmentError(
				apperrors.CodeEnvDirectory,
				"failed to create directory",
				err,
			).WithModule("app").WithField("path", dir)
		}
	}

	a.chownDocRoot(docRoot)
	return nil
}

// chownDocRoot hands the document root to the invoking user and the
// web-server group. Lookup failures only warn; content served as root-owned
// 0755 still works.
func (a *App) chownDocRoot(docRoot string) {
	uid, gid := -1, -1

	if u, err := user.Lookup(a.config.InvokingUser); err == nil {
		if parsed, err := strconv.Atoi(u.Uid); err == nil {
			uid = parsed
		}
	}
	if g, err := user.LookupGroup(a.config.Layout.WebServerGroup); err == nil {
		if parsed, err := strconv.Atoi(g.Gid); err == nil {
			gid = parsed
		}
	}

	if uid < 0 && gid < 0 {
		a.logger.Warn("Could not resolve %s:%s, leaving document root owned by root",
			a.config.InvokingUser, a.config.Layout.WebServerGroup)
		return
	}

	if err := os.Chown(docRoot, uid, gid); err != nil {
		a.logger.Warn("Failed to chown document root: %v", err)
	}
}

// verify probes the activated site, renders the summary, records the run and
// maps a failed probe to the verification exit path.
func (a *App) verify(req *input.Request, certIssued bool, started time.Time) error {
	a.console.StartProgress("Verifying deployment")
	result := a.probe.Verify(req.Subdomain, req.EnableHTTPS)
	a.console.StopProgress("Verifying deployment")

	verifier.WriteReport(a.printer, verifier.ReportData{
		Subdomain:    req.Subdomain,
		DocumentRoot: a.config.Layout.DocumentRoot(req.SafeName),
		VhostPath:    a.config.Layout.VhostPath(req.SafeName),
		RepoURL:      req.RepoURL,
		CertIssued:   certIssued,
		Result:       result,
	})

	a.recordHistory(req, result, time.Since(started))

	return result.Err(req.Subdomain)
}

// recordHistory appends the run to the sqlite history store; failures here
// never affect the run outcome.
func (a *App) recordHistory(req *input.Request, result verifier.Result, elapsed time.Duration) {
	store, err := history.Open(a.config.Layout.HistoryPath(), a.logger)
	if err != nil {
		a.logger.Warn("History store unavailable: %v", err)
		return
	}
	defer store.Close()

	outcome := "verified"
	if !result.Success() {
		outcome = "verification-failed"
	}

	store.Record(history.Deployment{
		Subdomain: req.Subdomain,
		RepoURL:   req.RepoURL,
		HTTPS:     req.EnableHTTPS,
		Outcome:   outcome,
		Elapsed:   elapsed,
	})
}
