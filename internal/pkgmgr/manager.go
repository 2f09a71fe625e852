package pkgmgr

import (
	"strings"

	apperrors "sitedeploy/internal/errors"
)

// RequiredTools are the packages the deployment workflow depends on:
// the version-control client, the web-server daemon and the HTTP probe tool.
var RequiredTools = []string{
	"git",
	"nginx",
	"curl",
}

// Manager orchestrates package installation via dpkg/apt.
type Manager struct {
	exec Executor
}

// NewManager constructs a Manager with the provided executor (defaults to SystemExecutor).
func NewManager(exec Executor) *Manager {
	if exec == nil {
		exec = SystemExecutor{}
	}
	return &Manager{exec: exec}
}

// EnsureTools refreshes the package index, then installs any missing
// required tool. Index refresh and install failures are fatal for the run;
// no partial-install recovery is attempted.
func (m *Manager) EnsureTools() error {
	if err := m.updatePackageIndex(); err != nil {
		return err
	}

	missing, err := m.missingPackages(RequiredTools)
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		return nil
	}

	return m.installPackages(missing)
}

// InstallPackages installs the named packages after refreshing the index.
// Used by the certificate manager for its issuance client.
func (m *Manager) InstallPackages(packages []string) error {
	missing, err := m.missingPackages(packages)
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		return nil
	}

	if err := m.updatePackageIndex(); err != nil {
		return err
	}

	return m.installPackages(missing)
}

func (m *Manager) missingPackages(wanted []string) ([]string, error) {
	installed, err := m.installedPackageSet()
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, pkg := range wanted {
		if _, exists := installed[pkg]; !exists {
			missing = append(missing, pkg)
		}
	}
	return missing, nil
}

func (m *Manager) installedPackageSet() (map[string]struct{}, error) {
	output, err := m.exec.Output("dpkg-query", "-W", "-f=${binary:Package}\n")
	if err != nil {
		return nil, pkgError("pkgmgr.installedPackageSet", "dpkg-query failed", err, apperrors.Metadata{
			"command": "dpkg-query -W",
		})
	}

	result := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		pkg := strings.TrimSpace(line)
		if pkg == "" {
			continue
		}
		result[pkg] = struct{}{}
		if idx := strings.Index(pkg, ":"); idx > 0 {
			result[pkg[:idx]] = struct{}{}
		}
	}
	return result, nil
}

func (m *Manager) installPackages(packages []string) error {
	args := append([]string{"install", "-y"}, packages...)
	if err := m.exec.Run("apt", args...); err != nil {
		return pkgError("pkgmgr.installPackages", "failed to install packages via apt", err, apperrors.Metadata{
			"packages": strings.Join(packages, ","),
		}).WithHint("inspect the failure with: apt install " + strings.Join(packages, " "))
	}
	return nil
}

func (m *Manager) updatePackageIndex() error {
	if err := m.exec.Run("apt", "update"); err != nil {
		return pkgError("pkgmgr.updatePackageIndex", "apt update failed", err, nil).
			WithHint("verify the mirror configuration in /etc/apt/sources.list")
	}
	return nil
}

func pkgError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.EnvironmentError(apperrors.CodeEnvPackages, message, err).
		WithModule("pkgmgr").
		WithOperation(operation).
		WithFields(metadata)
}
