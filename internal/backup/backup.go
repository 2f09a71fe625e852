package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"sitedeploy/internal/logger"
)

// Categories tag what a snapshot protects.
const (
	CategorySiteConfig  = "site-config"
	CategoryProject     = "project"
	CategoryCertificate = "certificate"
)

// Manager creates timestamped copies under a dedicated backup root before
// destructive overwrites. Retention is capped per source; oldest pruned.
type Manager struct {
	root   string
	keep   int
	logger logger.Logger
	now    func() time.Time
}

// NewManager constructs a backup manager rooted at the given directory.
func NewManager(root string, keep int, log logger.Logger) *Manager {
	if keep <= 0 {
		keep = 5
	}
	return &Manager{
		root:   root,
		keep:   keep,
		logger: log,
		now:    time.Now,
	}
}

// Snapshot copies sourcePath into <root>/<category>/<base>-<timestamp>.
// A missing source is not an error; the empty path signals nothing was saved.
func (m *Manager) Snapshot(category, sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to inspect backup source %s", sourcePath)
	}

	categoryDir := filepath.Join(m.root, category)
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create backup directory %s", categoryDir)
	}

	base := filepath.Base(sourcePath)
	dest := filepath.Join(categoryDir, fmt.Sprintf("%s-%s", base, m.now().Format("20060102-150405")))

	if info.IsDir() {
		err = copyTree(sourcePath, dest)
	} else {
		err = copyFile(sourcePath, dest, info.Mode())
	}
	if err != nil {
		os.RemoveAll(dest)
		return "", errors.Wrapf(err, "failed to copy %s to backup", sourcePath)
	}

	if m.logger != nil {
		m.logger.Info("Backed up %s to %s", sourcePath, dest)
	}

	if err := m.prune(categoryDir, base); err != nil && m.logger != nil {
		m.logger.Warn("Backup pruning failed: %v", err)
	}

	return dest, nil
}

// prune removes the oldest snapshots of one source beyond the retention cap.
// Timestamped suffixes sort lexically, so name order is age order.
func (m *Manager) prune(categoryDir, base string) error {
	entries, err := os.ReadDir(categoryDir)
	if err != nil {
		return err
	}

	var snapshots []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), base+"-") {
			snapshots = append(snapshots, entry.Name())
		}
	}

	if len(snapshots) <= m.keep {
		return nil
	}

	sort.Strings(snapshots)
	for _, name := range snapshots[:len(snapshots)-m.keep] {
		if err := os.RemoveAll(filepath.Join(categoryDir, name)); err != nil {
			return err
		}
	}

	return nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, "failed to calculate relative path: %s", path)
		}

		dstPath := filepath.Join(dst, relPath)
		if info.IsDir() {
			return os.MkdirAll(dstPath, info.Mode())
		}

		return copyFile(path, dstPath, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "failed to read source file: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create destination directory: %s", filepath.Dir(dst))
	}

	tmpDst := dst + ".tmp"
	if err := os.WriteFile(tmpDst, data, mode); err != nil {
		return errors.Wrapf(err, "failed to write temporary file: %s", tmpDst)
	}

	if err := os.Rename(tmpDst, dst); err != nil {
		os.Remove(tmpDst)
		return errors.Wrapf(err, "failed to move file to final location: %s", dst)
	}

	return nil
}
