package fetcher

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
	"sitedeploy/internal/pkgmgr"
)

// Options describe one repository fetch into a document root.
type Options struct {
	URL          string
	Private      bool
	Username     string
	Token        string
	DocumentRoot string
	OwnerUser    string
	OwnerGroup   string
}

// Fetcher produces a populated document root from a git repository, or fails
// leaving no partial clone state behind.
type Fetcher struct {
	exec   pkgmgr.Executor
	logger logger.Logger

	// Seams for tests.
	mkdirTemp func(dir, pattern string) (string, error)
	chown     func(path string, uid, gid int) error
}

// New constructs a Fetcher using the provided executor (defaults to SystemExecutor).
func New(exec pkgmgr.Executor, log logger.Logger) *Fetcher {
	if exec == nil {
		exec = pkgmgr.SystemExecutor{}
	}
	return &Fetcher{
		exec:      exec,
		logger:    log,
		mkdirTemp: os.MkdirTemp,
		chown:     os.Chown,
	}
}

// Fetch verifies reachability, clones at shallow depth via the ordered
// transport strategies, and normalizes ownership and modes on success.
// Unrecoverable failures remove whatever partial content was created.
func (f *Fetcher) Fetch(opts Options) error {
	strategies, err := f.buildStrategies(opts)
	if err != nil {
		return err
	}

	probeURL := strategies[0].probeURL
	if err := f.verifyReachable(probeURL); err != nil {
		return err
	}

	var lastErr error
	for _, strat := range strategies {
		f.logger.Debug("Attempting clone via %s transport", strat.name)

		err := strat.clone(f, opts.DocumentRoot)
		if err == nil {
			f.logger.Info("Repository cloned via %s transport", strat.name)
			f.normalizeTree(opts)
			return nil
		}

		lastErr = err
		f.logger.Warn("Clone via %s transport failed: %v", strat.name, redactError(err, opts.Token))
		f.cleanupPartial(opts.DocumentRoot)
	}

	return apperrors.NetworkError(
		apperrors.CodeNetworkClone,
		"all clone transports failed for "+redactURL(opts.URL),
		redactError(lastErr, opts.Token),
	).WithModule("fetcher").
		WithHint("verify the URL and token manually with: git ls-remote " + redactURL(opts.URL))
}

// verifyReachable performs a lightweight remote listing before cloning.
func (f *Fetcher) verifyReachable(url string) error {
	if _, err := f.exec.Output("git", "ls-remote", "--heads", url); err != nil {
		return apperrors.NetworkError(
			apperrors.CodeNetworkUnreachable,
			"repository is not reachable: "+redactURL(url),
			err,
		).WithModule("fetcher").
			WithHint("check the URL and credentials with: git ls-remote " + redactURL(url))
	}
	return nil
}

func (f *Fetcher) shallowClone(url, dest string, extraArgs ...string) error {
	args := append(extraArgs, "clone", "--depth", "1", "--single-branch", url, dest)
	return f.exec.Run("git", args...)
}

// cleanupPartial removes the contents of the document root without removing
// the directory itself, which the directory manager owns.
func (f *Fetcher) cleanupPartial(docRoot string) {
	entries, err := os.ReadDir(docRoot)
	if err != nil {
		return
	}
	for _, entry := range entries {
		os.RemoveAll(filepath.Join(docRoot, entry.Name()))
	}
}

// normalizeTree sets directories to 0755, files to 0644, and ownership to the
// invoking user paired with the web-server group. Ownership failures degrade
// to warnings; mode normalization is still applied.
func (f *Fetcher) normalizeTree(opts Options) {
	uid, gid := f.resolveOwner(opts.OwnerUser, opts.OwnerGroup)

	walkErr := filepath.Walk(opts.DocumentRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		mode := os.FileMode(0o644)
		if info.IsDir() {
			mode = 0o755
		}
		if err := os.Chmod(path, mode); err != nil {
			return err
		}

		if uid >= 0 || gid >= 0 {
			if err := f.chown(path, uid, gid); err != nil {
				return err
			}
		}
		return nil
	})

	if walkErr != nil {
		f.logger.Warn("Ownership normalization incomplete: %v", walkErr)
	}
}

func (f *Fetcher) resolveOwner(userName, groupName string) (int, int) {
	uid, gid := -1, -1

	if userName != "" {
		if u, err := user.Lookup(userName); err == nil {
			if parsed, err := strconv.Atoi(u.Uid); err == nil {
				uid = parsed
			}
		} else {
			f.logger.Warn("User %s not found, leaving file owner unchanged", userName)
		}
	}

	if groupName != "" {
		if g, err := user.LookupGroup(groupName); err == nil {
			if parsed, err := strconv.Atoi(g.Gid); err == nil {
				gid = parsed
			}
		} else {
			f.logger.Warn("Group %s not found, leaving file group unchanged", groupName)
		}
	}

	return uid, gid
}

func redactError(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), token, "***")
	if msg == err.Error() {
		return err
	}
	return apperrors.New(apperrors.CodeNetworkClone, apperrors.KindNetwork, msg, nil)
}
