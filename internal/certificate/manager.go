package certificate

import (
	"net"
	"path/filepath"
	"strings"

	"sitedeploy/internal/backup"
	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/pkgmgr"
	"sitedeploy/internal/system"
)

var certbotPackages = []string{"certbot", "python3-certbot-nginx"}

// Manager obtains a TLS certificate for one subdomain via certbot. Every
// failure here is reported as an enhancement warning; the HTTP site stays
// live regardless.
type Manager struct {
	layout  *system.Layout
	exec    pkgmgr.Executor
	pkgs    *pkgmgr.Manager
	backups *backup.Manager
	logger  logger.Logger

	lookupHost func(host string) ([]string, error)
	publicIP   func() (string, error)
	listen     func(network, address string) (net.Listener, error)
}

// NewManager constructs a certificate Manager.
func NewManager(layout *system.Layout, exec pkgmgr.Executor, pkgs *pkgmgr.Manager, backups *backup.Manager, log logger.Logger) *Manager {
	if exec == nil {
		exec = pkgmgr.SystemExecutor{}
	}
	m := &Manager{
		layout:     layout,
		exec:       exec,
		pkgs:       pkgs,
		backups:    backups,
		logger:     log,
		lookupHost: net.LookupHost,
		listen:     net.Listen,
	}
	m.publicIP = m.detectPublicIP
	return m
}

// detectPublicIP asks an external echo service for the address issuance
// validation will reach. curl is one of the required tools.
func (m *Manager) detectPublicIP() (string, error) {
	out, err := m.exec.Output("curl", "-fsS", "--max-time", "5", "https://api.ipify.org")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Issue backs up any existing certificate material, installs the issuance
// client, runs soft prechecks and requests the certificate. The returned
// error, when non-nil, is always non-fatal.
func (m *Manager) Issue(subdomain, email string) error {
	m.backupCertificateState(subdomain)

	if err := m.ensureCertbot(); err != nil {
		return enhancement("certificate client could not be installed", err).
			WithHint("install it manually with: apt install certbot python3-certbot-nginx")
	}

	m.runPrechecks(subdomain)

	args := []string{
		"--nginx",
		"-d", subdomain,
		"--non-interactive",
		"--agree-tos",
		"--redirect",
	}
	if email != "" {
		args = append(args, "-m", email)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}

	if err := m.exec.Run("certbot", args...); err != nil {
		return enhancement("certificate issuance failed for "+subdomain, err).
			WithHint("retry manually with: certbot --nginx -d " + subdomain)
	}

	m.logger.Info("Certificate issued for %s", subdomain)
	return nil
}

// backupCertificateState snapshots the live and archive directories for the
// subdomain before certbot touches them. Missing directories are skipped.
func (m *Manager) backupCertificateState(subdomain string) {
	for _, dir := range []string{
		filepath.Join(m.layout.CertLiveDir, subdomain),
		filepath.Join(m.layout.CertArchiveDir, subdomain),
	} {
		if _, err := m.backups.Snapshot(backup.CategoryCertificate, dir); err != nil {
			m.logger.Warn("Certificate backup failed for %s: %v", dir, err)
		}
	}
}

// ensureCertbot installs certbot from apt, falling back to the snap build
// when the distribution packages are unavailable.
func (m *Manager) ensureCertbot() error {
	aptErr := m.pkgs.InstallPackages(certbotPackages)
	if aptErr == nil {
		return nil
	}
	m.logger.Warn("apt install of certbot failed, trying snap: %v", aptErr)

	if err := m.exec.Run("snap", "install", "--classic", "certbot"); err != nil {
		return aptErr
	}
	if err := m.exec.Run("ln", "-sf", "/snap/bin/certbot", "/usr/bin/certbot"); err != nil {
		m.logger.Warn("Could not link snap certbot into /usr/bin: %v", err)
	}
	return nil
}

// runPrechecks surfaces the usual issuance blockers before certbot is
// invoked. Each failing check is a warning only; certbot produces the
// authoritative error.
func (m *Manager) runPrechecks(subdomain string) {
	m.checkDNS(subdomain)

	nginxActive := m.exec.Run("systemctl", "is-active", "--quiet", "nginx") == nil
	if !nginxActive {
		m.logger.Warn("nginx does not appear to be active; the --nginx installer needs a running server")
	}

	// Port 443 must be free or held by nginx itself.
	if ln, err := m.listen("tcp", ":443"); err == nil {
		ln.Close()
	} else if !nginxActive {
		m.logger.Warn("Port 443 is held by another process: %v", err)
	}

	if _, err := m.exec.Output("nginx", "-t"); err != nil {
		m.logger.Warn("nginx configuration check failed; certbot cannot rewrite a broken configuration")
	}
}

// checkDNS verifies the subdomain resolves to this host's public address.
// A record pointing elsewhere is the most common issuance failure.
func (m *Manager) checkDNS(subdomain string) {
	addrs, err := m.lookupHost(subdomain)
	if err != nil || len(addrs) == 0 {
		m.logger.Warn("DNS lookup for %s failed; issuance requires a record pointing at this host", subdomain)
		return
	}

	hostIP, err := m.publicIP()
	if err != nil || hostIP == "" {
		m.logger.Warn("Could not determine this host's public IP, skipping DNS match check: %v", err)
		return
	}

	for _, addr := range addrs {
		if addr == hostIP {
			return
		}
	}
	m.logger.Warn("%s resolves to %s but this host's public IP is %s; issuance will likely fail",
		subdomain, strings.Join(addrs, ", "), hostIP)
}

func enhancement(message string, err error) *apperrors.AppError {
	return apperrors.EnhancementWarning(apperrors.CodeEnhancementCert, message, err).
		WithModule("certificate")
}
