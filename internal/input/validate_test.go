package input

import (
	"strings"
	"testing"

	apperrors "sitedeploy/internal/errors"
)

func TestValidateSubdomain(t *testing.T) {
	tests := []struct {
		name      string
		subdomain string
		wantErr   bool
	}{
		{name: "simple fqdn", subdomain: "app.example.com", wantErr: false},
		{name: "single label", subdomain: "localhost", wantErr: false},
		{name: "digits and hyphens", subdomain: "my-app2.eu-west.example.com", wantErr: false},
		{name: "surrounding whitespace trimmed", subdomain: "  app.example.com  ", wantErr: false},
		{name: "empty", subdomain: "", wantErr: true},
		{name: "whitespace only", subdomain: "   ", wantErr: true},
		{name: "leading dot", subdomain: ".example.com", wantErr: true},
		{name: "trailing dot", subdomain: "example.com.", wantErr: true},
		{name: "leading hyphen", subdomain: "-app.example.com", wantErr: true},
		{name: "trailing hyphen", subdomain: "app.example.com-", wantErr: true},
		{name: "consecutive dots", subdomain: "app..example.com", wantErr: true},
		{name: "label starts with hyphen", subdomain: "app.-bad.com", wantErr: true},
		{name: "underscore", subdomain: "app_1.example.com", wantErr: true},
		{name: "embedded space", subdomain: "app .example.com", wantErr: true},
		{name: "over length limit", subdomain: strings.Repeat("a", 250) + ".com", wantErr: true},
		{name: "label over 63 chars", subdomain: strings.Repeat("a", 64) + ".com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubdomain(tt.subdomain)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSubdomain(%q) error = %v, wantErr %v", tt.subdomain, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			appErr, ok := apperrors.As(err)
			if !ok {
				t.Fatalf("expected structured error, got %T", err)
			}
			if appErr.Kind != apperrors.KindInput {
				t.Errorf("Kind = %v, want %v", appErr.Kind, apperrors.KindInput)
			}
		})
	}
}

func TestValidateRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https with git suffix", url: "https://github.com/owner/repo.git", wantErr: false},
		{name: "http allowed", url: "http://git.internal/owner/repo.git", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "ssh scheme rejected", url: "git@github.com:owner/repo.git", wantErr: true},
		{name: "bare path rejected", url: "owner/repo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRepoURL(tt.url); (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRepoURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestNeedsURLConfirmation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "git suffix anywhere", url: "https://git.example.org/owner/repo.git", want: false},
		{name: "known host without suffix", url: "https://github.com/owner/repo", want: false},
		{name: "known host subdomain", url: "https://api.github.com/owner/repo", want: false},
		{name: "unknown host without suffix", url: "https://git.example.org/owner/repo", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsURLConfirmation(tt.url); got != tt.want {
				t.Errorf("NeedsURLConfirmation(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "empty is optional", email: "", wantErr: false},
		{name: "whitespace is optional", email: "   ", wantErr: false},
		{name: "valid", email: "ops@example.com", wantErr: false},
		{name: "missing at", email: "ops.example.com", wantErr: true},
		{name: "missing tld", email: "ops@example", wantErr: true},
		{name: "short tld", email: "ops@example.c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateEmail(tt.email); (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		answer  string
		want    bool
		wantErr bool
	}{
		{answer: "y", want: true},
		{answer: "YES", want: true},
		{answer: " Yes ", want: true},
		{answer: "n", want: false},
		{answer: "no", want: false},
		{answer: "", wantErr: true},
		{answer: "maybe", wantErr: true},
		{answer: "yy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, err := ParseYesNo(tt.answer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYesNo(%q) error = %v, wantErr %v", tt.answer, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseYesNo(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestSafeName(t *testing.T) {
	if got := SafeName("app.example.com"); got != "app.example.com" {
		t.Errorf("SafeName = %q, want unchanged", got)
	}
	if got := SafeName("evil/../etc"); got != "evil_.._etc" {
		t.Errorf("SafeName = %q, want path separators replaced", got)
	}
}

func TestValidateToken(t *testing.T) {
	if err := ValidateToken(""); err == nil {
		t.Error("empty token should be rejected")
	}
	if err := ValidateToken("ghp_abcdef1234567890"); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if !IsWeakToken("short") {
		t.Error("short token should be flagged weak")
	}
	if IsWeakToken("ghp_abcdef1234567890") {
		t.Error("long token should not be flagged weak")
	}
}
