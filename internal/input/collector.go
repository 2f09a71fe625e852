package input

import (
	"fmt"
	"strings"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
)

// SiteExistsFunc reports whether a vhost configuration for the derived safe
// name is already present on the host.
type SiteExistsFunc func(safeName string) bool

// Collector drives the fixed prompt sequence and validates every answer
// before any component mutates the host.
type Collector struct {
	prompter   Prompter
	logger     logger.Logger
	siteExists SiteExistsFunc
}

// NewCollector constructs a Collector.
func NewCollector(prompter Prompter, log logger.Logger, siteExists SiteExistsFunc) *Collector {
	return &Collector{
		prompter:   prompter,
		logger:     log,
		siteExists: siteExists,
	}
}

// Collect runs the prompt sequence:
// subdomain → repository-exists → [visibility → URL → [username, token]] →
// HTTPS → [email]. It returns a fully validated Request or an input error.
func (c *Collector) Collect() (*Request, error) {
	req := &Request{}

	subdomain, err := c.prompter.Ask("Subdomain to deploy (e.g. app.example.com)")
	if err != nil {
		return nil, err
	}
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, err
	}
	// Store the trimmed form: every derived value (safe name, vhost paths,
	// certbot -d, probe URLs) must see exactly what the validator accepted.
	req.Subdomain = strings.TrimSpace(subdomain)
	req.SafeName = SafeName(req.Subdomain)

	if c.siteExists != nil && c.siteExists(req.SafeName) {
		c.logger.Warn("A site configuration for %s already exists", req.Subdomain)
		ok, err := c.prompter.Confirm(fmt.Sprintf("Overwrite the existing configuration for %s?", req.Subdomain))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.InputError(
				apperrors.CodeInputSubdomain,
				"deployment cancelled: subdomain is already configured",
				nil,
			).WithModule("input")
		}
	}

	hasRepo, err := c.prompter.Confirm("Deploy content from a git repository?")
	if err != nil {
		return nil, err
	}
	req.HasRepository = hasRepo

	if hasRepo {
		if err := c.collectRepository(req); err != nil {
			return nil, err
		}
	}

	enableHTTPS, err := c.prompter.Confirm("Enable HTTPS with an automatically issued certificate?")
	if err != nil {
		return nil, err
	}
	req.EnableHTTPS = enableHTTPS

	if enableHTTPS {
		email, err := c.prompter.Ask("Registration email (optional, Enter to skip)")
		if err != nil {
			return nil, err
		}
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		req.Email = strings.TrimSpace(email)
	}

	return req, nil
}

func (c *Collector) collectRepository(req *Request) error {
	visibility, err := c.prompter.Select("Repository visibility", []string{
		string(VisibilityPublic),
		string(VisibilityPrivate),
	})
	if err != nil {
		return err
	}
	req.Visibility = Visibility(visibility)

	repoURL, err := c.prompter.Ask("Repository URL")
	if err != nil {
		return err
	}
	repoURL = strings.TrimSpace(repoURL)
	if err := ValidateRepoURL(repoURL); err != nil {
		return err
	}

	if NeedsURLConfirmation(repoURL) {
		c.logger.Warn("URL %s has no .git suffix and is not a known hosting domain", repoURL)
		ok, err := c.prompter.Confirm("Use this URL anyway?")
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.InputError(
				apperrors.CodeInputRepoURL,
				"deployment cancelled: repository URL rejected",
				nil,
			).WithModule("input")
		}
	}
	req.RepoURL = repoURL

	if req.Visibility == VisibilityPrivate {
		username, err := c.prompter.Ask("Username (optional, Enter to skip)")
		if err != nil {
			return err
		}
		req.Username = strings.TrimSpace(username)

		token, err := c.prompter.AskSecret("Personal access token")
		if err != nil {
			return err
		}
		if err := ValidateToken(token); err != nil {
			return err
		}
		if IsWeakToken(token) {
			c.logger.Warn("Token is shorter than 10 characters; verify it was pasted completely")
		}
		req.Token = strings.TrimSpace(token)
	}

	return nil
}
