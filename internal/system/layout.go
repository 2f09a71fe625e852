package system

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LayoutOverridePath is the optional on-disk layout override consulted at
// startup. Absence is not an error; fields present there win over the
// embedded defaults.
const LayoutOverridePath = "/etc/sitedeploy/layout.yaml"

// Layout describes every filesystem location the workflow reads or writes.
type Layout struct {
	WebRoot        string        `yaml:"web_root"`
	SitesAvailable string        `yaml:"sites_available"`
	SitesEnabled   string        `yaml:"sites_enabled"`
	LogDir         string        `yaml:"log_dir"`
	BackupRoot     string        `yaml:"backup_root"`
	StateDir       string        `yaml:"state_dir"`
	CertLiveDir    string        `yaml:"cert_live_dir"`
	CertArchiveDir string        `yaml:"cert_archive_dir"`
	WebServerUser  string        `yaml:"web_server_user"`
	WebServerGroup string        `yaml:"web_server_group"`
	ProbeTimeout   Duration      `yaml:"probe_timeout"`
	BackupKeep     int           `yaml:"backup_keep"`
}

// Duration wraps time.Duration so yaml values like "10s" decode naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid duration: %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

//go:embed base-layout.yaml
var embeddedBaseLayout embed.FS

// BaseLayout returns the embedded default layout.
func BaseLayout() (*Layout, error) {
	data, err := embeddedBaseLayout.ReadFile("base-layout.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded base layout")
	}
	return decodeLayout(data)
}

// LoadLayout builds the effective layout: embedded defaults merged with the
// optional override file at the provided path.
func LoadLayout(overridePath string) (*Layout, error) {
	base, err := BaseLayout()
	if err != nil {
		return nil, err
	}

	if overridePath == "" {
		return base, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, errors.Wrapf(err, "failed to read layout override: %s", overridePath)
	}

	override, err := decodeLayout(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse layout override: %s", overridePath)
	}

	return mergeLayouts(base, override), nil
}

func decodeLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, errors.Wrap(err, "failed to decode layout yaml")
	}
	return &layout, nil
}

func mergeLayouts(base, override *Layout) *Layout {
	result := *base

	setString := func(dst *string, src string) {
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			*dst = trimmed
		}
	}

	setString(&result.WebRoot, override.WebRoot)
	setString(&result.SitesAvailable, override.SitesAvailable)
	setString(&result.SitesEnabled, override.SitesEnabled)
	setString(&result.LogDir, override.LogDir)
	setString(&result.BackupRoot, override.BackupRoot)
	setString(&result.StateDir, override.StateDir)
	setString(&result.CertLiveDir, override.CertLiveDir)
	setString(&result.CertArchiveDir, override.CertArchiveDir)
	setString(&result.WebServerUser, override.WebServerUser)
	setString(&result.WebServerGroup, override.WebServerGroup)

	if override.ProbeTimeout > 0 {
		result.ProbeTimeout = override.ProbeTimeout
	}
	if override.BackupKeep > 0 {
		result.BackupKeep = override.BackupKeep
	}

	return &result
}

// DocumentRoot joins the web root with a filesystem-safe site name.
func (l *Layout) DocumentRoot(safeName string) string {
	return filepath.Join(l.WebRoot, safeName)
}

// VhostPath returns the sites-available path for a site.
func (l *Layout) VhostPath(safeName string) string {
	return filepath.Join(l.SitesAvailable, safeName+".conf")
}

// EnabledPath returns the sites-enabled link path for a site.
func (l *Layout) EnabledPath(safeName string) string {
	return filepath.Join(l.SitesEnabled, safeName+".conf")
}

// HistoryPath returns the sqlite database location for run history.
func (l *Layout) HistoryPath() string {
	return filepath.Join(l.StateDir, "history.db")
}
