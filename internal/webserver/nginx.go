package webserver

import (
	"os"
	"path/filepath"

	"sitedeploy/internal/backup"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/pkgmgr"
	"sitedeploy/internal/system"
)

// Configurator writes, enables and activates the nginx virtual host for one
// subdomain.
type Configurator struct {
	layout  *system.Layout
	exec    pkgmgr.Executor
	backups *backup.Manager
	logger  logger.Logger
}

// NewConfigurator constructs a Configurator (executor defaults to SystemExecutor).
func NewConfigurator(layout *system.Layout, exec pkgmgr.Executor, backups *backup.Manager, log logger.Logger) *Configurator {
	if exec == nil {
		exec = pkgmgr.SystemExecutor{}
	}
	return &Configurator{
		layout:  layout,
		exec:    exec,
		backups: backups,
		logger:  log,
	}
}

// SiteExists reports whether a vhost file for the safe name is already present.
func (c *Configurator) SiteExists(safeName string) bool {
	_, err := os.Stat(c.layout.VhostPath(safeName))
	return err == nil
}

// WritePlaceholder creates an index.html in the document root when no index
// file exists yet, so the site serves a page immediately after activation.
func (c *Configurator) WritePlaceholder(subdomain, safeName string) error {
	docRoot := c.layout.DocumentRoot(safeName)

	for _, name := range []string{"index.html", "index.htm"} {
		if _, err := os.Stat(filepath.Join(docRoot, name)); err == nil {
			c.logger.Debug("Index file already present, skipping placeholder")
			return nil
		}
	}

	page, err := renderTemplate("placeholder", placeholderTemplate, templateData{
		ServerName:   subdomain,
		DocumentRoot: docRoot,
	})
	if err != nil {
		return apperrors.ConfigError(apperrors.CodeConfigGeneric, "failed to render placeholder page", err).
			WithModule("webserver")
	}

	indexPath := filepath.Join(docRoot, "index.html")
	if err := os.WriteFile(indexPath, page, 0o644); err != nil {
		return apperrors.EnvironmentError(apperrors.CodeEnvDirectory, "failed to write placeholder page", err).
			WithModule("webserver").
			WithField("path", indexPath)
	}

	c.logger.Info("Placeholder page written to %s", indexPath)
	return nil
}

// Configure backs up any prior vhost, writes the new server block, enables it
// via symlink, validates the full configuration and reloads nginx.
func (c *Configurator) Configure(subdomain, safeName string) error {
	vhostPath := c.layout.VhostPath(safeName)

	if _, err := c.backups.Snapshot(backup.CategorySiteConfig, vhostPath); err != nil {
		return apperrors.EnvironmentError(apperrors.CodeEnvDirectory, "failed to back up existing site configuration", err).
			WithModule("webserver").
			WithField("path", vhostPath)
	}

	docRoot := c.layout.DocumentRoot(safeName)
	conf, err := renderTemplate("vhost", vhostTemplate, templateData{
		ServerName:   subdomain,
		DocumentRoot: docRoot,
		AccessLog:    filepath.Join(c.layout.LogDir, safeName+".access.log"),
		ErrorLog:     filepath.Join(c.layout.LogDir, safeName+".error.log"),
	})
	if err != nil {
		return apperrors.ConfigError(apperrors.CodeConfigGeneric, "failed to render site configuration", err).
			WithModule("webserver")
	}

	if err := os.WriteFile(vhostPath, conf, 0o644); err != nil {
		return apperrors.EnvironmentError(apperrors.CodeEnvDirectory, "failed to write site configuration", err).
			WithModule("webserver").
			WithField("path", vhostPath)
	}
	c.logger.Info("Site configuration written to %s", vhostPath)

	if err := c.enableSite(safeName); err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return err
	}

	return c.Reload()
}

// enableSite links sites-available into sites-enabled. An existing link to
// the same target is left untouched.
func (c *Configurator) enableSite(safeName string) error {
	vhostPath := c.layout.VhostPath(safeName)
	enabledPath := c.layout.EnabledPath(safeName)

	if target, err := os.Readlink(enabledPath); err == nil {
		if target == vhostPath {
			c.logger.Debug("Site already enabled")
			return nil
		}
		if err := os.Remove(enabledPath); err != nil {
			return apperrors.EnvironmentError(apperrors.CodeEnvDirectory, "failed to replace stale site link", err).
				WithModule("webserver").
				WithField("path", enabledPath)
		}
	}

	if err := os.Symlink(vhostPath, enabledPath); err != nil {
		return apperrors.EnvironmentError(apperrors.CodeEnvDirectory, "failed to enable site", err).
			WithModule("webserver").
			WithField("path", enabledPath)
	}

	c.logger.Info("Site enabled via %s", enabledPath)
	return nil
}

// Validate runs the web-server configuration syntax check.
func (c *Configurator) Validate() error {
	if output, err := c.exec.Output("nginx", "-t"); err != nil {
		return apperrors.ConfigError(
			apperrors.CodeConfigValidate,
			"nginx rejected the configuration: "+string(output),
			err,
		).WithModule("webserver").
			WithHint("inspect the failing directive with: nginx -t")
	}
	return nil
}

// Reload asks systemd to reload nginx so the new server block takes effect.
func (c *Configurator) Reload() error {
	if err := c.exec.Run("systemctl", "reload", "nginx"); err != nil {
		return apperrors.ConfigError(apperrors.CodeConfigReload, "failed to reload nginx", err).
			WithModule("webserver").
			WithHint("check the service state with: systemctl status nginx")
	}
	c.logger.Info("nginx reloaded")
	return nil
}
