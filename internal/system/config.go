package system

import (
	"os"

	"github.com/pkg/errors"
)

// Config captures runtime characteristics and the filesystem layout used by
// the deployment workflow.
type Config struct {
	Architecture   string  `json:"architecture"`
	VirtType       string  `json:"virt_type"`
	PackageManager string  `json:"package_manager"`
	InvokingUser   string  `json:"invoking_user"`
	Layout         *Layout `json:"layout"`
}

// LoadConfig builds a Config populated with detected system attributes and
// the merged filesystem layout.
func LoadConfig() (*Config, error) {
	arch, err := detectArchitecture()
	if err != nil {
		return nil, errors.Wrap(err, "architecture detection failed")
	}

	virtType, err := detectVirtualization()
	if err != nil {
		return nil, errors.Wrap(err, "virtualization detection failed")
	}

	layout, err := LoadLayout(LayoutOverridePath)
	if err != nil {
		return nil, errors.Wrap(err, "layout configuration failed")
	}

	return &Config{
		Architecture:   arch,
		VirtType:       virtType,
		PackageManager: detectPackageManager(),
		InvokingUser:   invokingUser(),
		Layout:         layout,
	}, nil
}

// IsContainer reports whether the environment is containerized.
func (c *Config) IsContainer() bool {
	return c.VirtType == "container"
}

// HasAptPackageManager reports whether the primary install path is available.
func (c *Config) HasAptPackageManager() bool {
	return c.PackageManager == "apt"
}

// invokingUser resolves the non-root account that launched the tool via sudo,
// falling back to root when the tool was started from a root shell directly.
func invokingUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	return "root"
}
