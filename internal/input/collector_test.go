package input

import (
	"io"
	"testing"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
)

// scriptedPrompter replays canned answers in prompt order.
type scriptedPrompter struct {
	t       *testing.T
	answers []string
	pos     int
}

func (p *scriptedPrompter) next(label string) string {
	if p.pos >= len(p.answers) {
		p.t.Fatalf("unexpected prompt %q after %d answers", label, p.pos)
	}
	answer := p.answers[p.pos]
	p.pos++
	return answer
}

func (p *scriptedPrompter) Ask(label string) (string, error)       { return p.next(label), nil }
func (p *scriptedPrompter) AskSecret(label string) (string, error) { return p.next(label), nil }

func (p *scriptedPrompter) Confirm(question string) (bool, error) {
	return ParseYesNo(p.next(question))
}

func (p *scriptedPrompter) Select(label string, options []string) (string, error) {
	return p.next(label), nil
}

func testLogger() logger.Logger {
	return logger.NewStandardLogger(logger.WithOutput(io.Discard))
}

func TestCollectStaticSite(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"app.example.com", // subdomain
		"n",               // repository?
		"n",               // https?
	}}

	req, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if req.Subdomain != "app.example.com" || req.SafeName != "app.example.com" {
		t.Errorf("unexpected subdomain fields: %+v", req)
	}
	if req.HasRepository || req.EnableHTTPS {
		t.Errorf("expected plain static site, got %+v", req)
	}
}

func TestCollectPrivateRepositoryWithHTTPS(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"shop.example.com",                    // subdomain
		"y",                                   // repository?
		"private",                             // visibility
		"https://github.com/owner/shop.git",   // url
		"owner",                               // username
		"ghp_0123456789abcdef",                // token
		"y",                                   // https?
		"ops@example.com",                     // email
	}}

	req, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if !req.IsPrivate() {
		t.Error("expected private repository request")
	}
	if req.Token != "ghp_0123456789abcdef" || req.Username != "owner" {
		t.Errorf("credentials not captured: %+v", req)
	}
	if !req.EnableHTTPS || req.Email != "ops@example.com" {
		t.Errorf("https fields not captured: %+v", req)
	}
}

func TestCollectStoresTrimmedValues(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"  app.example.com  ",                   // subdomain, padded
		"y",                                     // repository?
		"private",                               // visibility
		"  https://github.com/owner/app.git  ",  // url, padded
		"  owner  ",                             // username, padded
		"  ghp_0123456789abcdef  ",              // token, padded
		"y",                                     // https?
		"  ops@example.com  ",                   // email, padded
	}}

	req, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if req.Subdomain != "app.example.com" {
		t.Errorf("Subdomain = %q, want trimmed", req.Subdomain)
	}
	if req.SafeName != "app.example.com" {
		t.Errorf("SafeName = %q, want derived from trimmed subdomain", req.SafeName)
	}
	if req.RepoURL != "https://github.com/owner/app.git" {
		t.Errorf("RepoURL = %q, want trimmed", req.RepoURL)
	}
	if req.Username != "owner" {
		t.Errorf("Username = %q, want trimmed", req.Username)
	}
	if req.Token != "ghp_0123456789abcdef" {
		t.Errorf("Token = %q, want trimmed", req.Token)
	}
	if req.Email != "ops@example.com" {
		t.Errorf("Email = %q, want trimmed", req.Email)
	}
}

func TestCollectRejectsInvalidSubdomain(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{"not valid!"}}

	_, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeInputSubdomain {
		t.Errorf("expected %s, got %v", apperrors.CodeInputSubdomain, err)
	}
}

func TestCollectInvalidAnswerIsFatal(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"app.example.com",
		"perhaps",
	}}

	_, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err == nil {
		t.Fatal("expected answer validation error")
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeInputAnswer {
		t.Errorf("expected %s, got %v", apperrors.CodeInputAnswer, err)
	}
}

func TestCollectExistingSiteDeclined(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"app.example.com",
		"n", // overwrite?
	}}
	exists := func(safeName string) bool { return true }

	_, err := NewCollector(prompter, testLogger(), exists).Collect()
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if apperrors.ExitCodeFor(err) != 2 {
		t.Errorf("exit code = %d, want 2", apperrors.ExitCodeFor(err))
	}
}

func TestCollectUnknownURLConfirmed(t *testing.T) {
	prompter := &scriptedPrompter{t: t, answers: []string{
		"app.example.com",
		"y",                              // repository?
		"public",                         // visibility
		"https://git.example.org/a/repo", // url, ambiguous
		"y",                              // use anyway
		"n",                              // https?
	}}

	req, err := NewCollector(prompter, testLogger(), nil).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if req.RepoURL != "https://git.example.org/a/repo" {
		t.Errorf("RepoURL = %q", req.RepoURL)
	}
	if req.IsPrivate() {
		t.Error("public repository marked private")
	}
}
