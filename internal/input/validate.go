package input

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	apperrors "sitedeploy/internal/errors"
)

const maxSubdomainLength = 253

// knownGitHosts are hosting domains accepted without a trailing .git suffix.
var knownGitHosts = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
	"codeberg.org",
}

var (
	dnsLabelPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]{2,}$`)
)

// ValidateSubdomain enforces an RFC-1035-style label sequence before the
// value is used to derive any filesystem or configuration path.
func ValidateSubdomain(subdomain string) error {
	trimmed := strings.TrimSpace(subdomain)

	fail := func(reason string) error {
		return apperrors.InputError(
			apperrors.CodeInputSubdomain,
			fmt.Sprintf("invalid subdomain %q: %s", subdomain, reason),
			nil,
		).WithModule("input").
			WithHint("use a fully-qualified name such as app.example.com")
	}

	switch {
	case trimmed == "":
		return fail("empty")
	case len(trimmed) > maxSubdomainLength:
		return fail(fmt.Sprintf("longer than %d characters", maxSubdomainLength))
	case strings.HasPrefix(trimmed, ".") || strings.HasSuffix(trimmed, "."):
		return fail("leading or trailing dot")
	case strings.HasPrefix(trimmed, "-") || strings.HasSuffix(trimmed, "-"):
		return fail("leading or trailing hyphen")
	case strings.Contains(trimmed, ".."):
		return fail("consecutive dots")
	}

	for _, label := range strings.Split(trimmed, ".") {
		if !dnsLabelPattern.MatchString(label) {
			return fail(fmt.Sprintf("label %q is not a valid DNS label", label))
		}
	}

	return nil
}

// ValidateRepoURL enforces an HTTP(S) scheme. Suffix and host heuristics are
// reported through NeedsURLConfirmation instead of failing here.
func ValidateRepoURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return apperrors.InputError(
			apperrors.CodeInputRepoURL,
			"repository URL must not be empty",
			nil,
		).WithModule("input")
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return apperrors.InputError(
			apperrors.CodeInputRepoURL,
			fmt.Sprintf("repository URL %q must start with http:// or https://", raw),
			nil,
		).WithModule("input").
			WithHint("example: https://github.com/owner/repo.git")
	}

	if _, err := url.Parse(trimmed); err != nil {
		return apperrors.InputError(
			apperrors.CodeInputRepoURL,
			fmt.Sprintf("repository URL %q is not parseable", raw),
			err,
		).WithModule("input")
	}

	return nil
}

// NeedsURLConfirmation reports whether the URL looks ambiguous: no .git
// suffix and a host outside the known hosting domains.
func NeedsURLConfirmation(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return true
	}

	if strings.HasSuffix(parsed.Path, ".git") {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, known := range knownGitHosts {
		if host == known || strings.HasSuffix(host, "."+known) {
			return false
		}
	}

	return true
}

// ValidateEmail accepts an empty value (email is optional) and otherwise
// enforces the usual local@domain.tld shape.
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil
	}

	if !emailPattern.MatchString(trimmed) {
		return apperrors.InputError(
			apperrors.CodeInputEmail,
			fmt.Sprintf("invalid email address: %q", email),
			nil,
		).WithModule("input")
	}

	return nil
}

// ValidateToken enforces a non-empty access token.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.InputError(
			apperrors.CodeInputCredentials,
			"access token must not be empty",
			nil,
		).WithModule("input").
			WithHint("create a personal access token with repository read scope")
	}
	return nil
}

// IsWeakToken flags suspiciously short tokens; callers warn without blocking.
func IsWeakToken(token string) bool {
	return len(strings.TrimSpace(token)) < 10
}

// ParseYesNo normalizes an interactive answer. Anything outside
// {y, yes, n, no} is a hard validation error.
func ParseYesNo(answer string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, apperrors.InputError(
			apperrors.CodeInputAnswer,
			fmt.Sprintf("answer %q is not one of y/yes/n/no", answer),
			nil,
		).WithModule("input")
	}
}
