package fetcher

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	apperrors "sitedeploy/internal/errors"
)

// placeholderUser stands in when a hosting provider only needs the token.
// Providers that authenticate by token alone ignore the username field.
const placeholderUser = "token"

// strategy is one way of presenting credentials to the git transport.
// Strategies are attempted in order; the first successful clone wins.
type strategy struct {
	name     string
	probeURL string
	clone    func(f *Fetcher, dest string) error
}

// buildStrategies returns the ordered transports for the request. Public
// repositories get a single anonymous transport. Private repositories first
// embed credentials in the URL, then fall back to a scoped credential file
// kept out of the process argument list.
func (f *Fetcher) buildStrategies(opts Options) ([]strategy, error) {
	if !opts.Private {
		return []strategy{{
			name:     "anonymous",
			probeURL: opts.URL,
			clone: func(f *Fetcher, dest string) error {
				return f.shallowClone(opts.URL, dest)
			},
		}}, nil
	}

	authURL, err := credentialURL(opts.URL, opts.Username, opts.Token)
	if err != nil {
		return nil, err
	}

	return []strategy{
		{
			name:     "embedded-url",
			probeURL: authURL,
			clone: func(f *Fetcher, dest string) error {
				return f.shallowClone(authURL, dest)
			},
		},
		{
			name:     "credential-file",
			probeURL: authURL,
			clone: func(f *Fetcher, dest string) error {
				return f.cloneWithCredentialFile(opts, dest)
			},
		},
	}, nil
}

// credentialURL embeds the username and token in the https URL. An omitted
// username is replaced with the placeholder.
func credentialURL(rawURL, username, token string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", apperrors.InputError(
			apperrors.CodeInputRepoURL,
			"repository URL cannot be parsed: "+rawURL,
			err,
		).WithModule("fetcher")
	}

	if username == "" {
		username = placeholderUser
	}
	parsed.User = url.UserPassword(username, token)
	return parsed.String(), nil
}

// cloneWithCredentialFile writes a git credential-store file in a private
// temporary directory and points a one-off credential helper at it. The
// directory is removed on every exit path.
func (f *Fetcher) cloneWithCredentialFile(opts Options, dest string) error {
	tmpDir, err := f.mkdirTemp("", "sitedeploy-cred-")
	if err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvDirectory,
			"failed to create temporary credential directory",
			err,
		).WithModule("fetcher")
	}
	defer os.RemoveAll(tmpDir)

	entry, err := credentialURL(opts.URL, opts.Username, opts.Token)
	if err != nil {
		return err
	}

	credFile := filepath.Join(tmpDir, "credentials")
	if err := os.WriteFile(credFile, []byte(entry+"\n"), 0o600); err != nil {
		return apperrors.EnvironmentError(
			apperrors.CodeEnvDirectory,
			"failed to write credential file",
			err,
		).WithModule("fetcher")
	}

	helper := fmt.Sprintf("credential.helper=store --file=%s", credFile)
	return f.shallowClone(opts.URL, dest, "-c", helper)
}

// redactURL strips any embedded userinfo for log and error output.
func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	parsed.User = url.User("***")
	return parsed.String()
}
