package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	apperrors "sitedeploy/internal/errors"
)

const (
	connectivityProbeURL = "https://deb.debian.org"
	minDiskBytes         = 1 << 30   // 1 GB
	minMemoryBytes       = 256 << 20 // 256 MB
)

// conflictingDaemons are web servers that would fight nginx for port 80.
var conflictingDaemons = []string{"apache2", "caddy", "lighttpd"}

func (c *Checker) checkPrivilege() error {
	if c.geteuid() == 0 {
		return nil
	}
	return apperrors.EnvironmentError(
		apperrors.CodeEnvPrivilege,
		"root privileges are required",
		nil,
	).WithModule("preflight").WithHint("re-run with: sudo sitedeploy")
}

func (c *Checker) checkConnectivity() error {
	resp, err := c.httpClient.Get(connectivityProbeURL)
	if err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"outbound HTTPS connectivity test failed",
			err,
		).WithField("url", connectivityProbeURL).
			WithHint("check DNS and the default route: ip route && cat /etc/resolv.conf")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"connectivity probe returned a server error",
			nil,
		).WithField("status_code", resp.StatusCode)
	}

	return nil
}

func (c *Checker) checkPackageManager() error {
	if c.config.HasAptPackageManager() {
		return nil
	}

	// Alternate managers are detected for the error message only; the
	// install path is apt-specific.
	if alt := c.config.PackageManager; alt != "" {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			fmt.Sprintf("apt not found (detected %s, which is unsupported for installation)", alt),
			nil,
		).WithHint("run this tool on a Debian-family host")
	}

	return apperrors.EnvironmentError(
		apperrors.CodeEnvPreflight,
		"no supported package manager found",
		nil,
	).WithHint("run this tool on a Debian-family host")
}

func (c *Checker) checkDiskSpace() error {
	available, err := c.diskAvailable("/")
	if err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"failed to read disk space information",
			err,
		)
	}

	if available < minDiskBytes {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			fmt.Sprintf("insufficient disk space: %d MB available, %d MB required",
				available>>20, minDiskBytes>>20),
			nil,
		).WithHint("free space with: apt clean && journalctl --vacuum-size=100M")
	}

	c.logger.Debug("Disk available space: %d MB", available>>20)
	return nil
}

func (c *Checker) checkMemory() error {
	available, err := c.memAvailable()
	if err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"failed to read memory information",
			err,
		)
	}

	if available < minMemoryBytes {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			fmt.Sprintf("insufficient available memory: %d MB available, %d MB required",
				available>>20, minMemoryBytes>>20),
			nil,
		)
	}

	c.logger.Debug("Available memory: %d MB", available>>20)
	return nil
}

func (c *Checker) checkPort80() error {
	ln, err := c.listen("tcp", ":80")
	if err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"port 80 is already in use",
			err,
		).WithHint("identify the listener with: ss -tlnp 'sport = :80'")
	}
	ln.Close()
	return nil
}

func (c *Checker) checkWebServerBinary() error {
	path, err := c.lookPath("nginx")
	if err != nil {
		// Absent is fine, the package installer adds it.
		c.logger.Debug("nginx binary not present yet, will be installed")
		return nil
	}

	if out, err := exec.Command(path, "-v").CombinedOutput(); err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			"installed nginx binary is not functional",
			err,
		).WithField("output", strings.TrimSpace(string(out))).
			WithHint("reinstall with: apt install --reinstall nginx")
	}

	return nil
}

func (c *Checker) checkConflictingDaemons() error {
	var active []string
	for _, daemon := range conflictingDaemons {
		if c.serviceActive(daemon) {
			active = append(active, daemon)
		}
	}

	if len(active) > 0 {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvPreflight,
			fmt.Sprintf("conflicting web server daemon(s) running: %s", strings.Join(active, ", ")),
			nil,
		).WithHint(fmt.Sprintf("stop them with: systemctl stop %s", strings.Join(active, " ")))
	}

	return nil
}

func systemdServiceActive(name string) bool {
	return exec.Command("systemctl", "is-active", "--quiet", name).Run() == nil
}

func diskAvailableBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

func memAvailableBytes() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * uint64(info.Unit), nil
}
