package input

import "strings"

// Visibility classifies the source repository access model.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Request carries every value collected from the operator for one run.
// It is assembled up front so the execution phase never blocks on a prompt.
type Request struct {
	Subdomain     string
	SafeName      string
	HasRepository bool
	Visibility    Visibility
	RepoURL       string
	Username      string
	Token         string
	EnableHTTPS   bool
	Email         string
}

// IsPrivate reports whether credentialed cloning is required.
func (r *Request) IsPrivate() bool {
	return r.HasRepository && r.Visibility == VisibilityPrivate
}

// SafeName derives the filesystem-safe form of a subdomain: path separators
// are replaced so the name can never escape the web root.
func SafeName(subdomain string) string {
	return strings.ReplaceAll(strings.TrimSpace(subdomain), "/", "_")
}
