package verifier

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
)

// Outcome captures one probe attempt.
type Outcome struct {
	OK      bool
	Status  int
	Latency time.Duration
	Err     error
}

// Describe renders the outcome for the summary table.
func (o Outcome) Describe() string {
	if o.Err != nil {
		return "unreachable"
	}
	return fmt.Sprintf("HTTP %d in %s", o.Status, o.Latency.Round(time.Millisecond))
}

// Result aggregates the plain and, when requested, secure probes.
type Result struct {
	Plain         Outcome
	Secure        Outcome
	SecureChecked bool
}

// Success reports whether every requested probe returned a 2xx or 3xx status.
func (r Result) Success() bool {
	if !r.Plain.OK {
		return false
	}
	if r.SecureChecked && !r.Secure.OK {
		return false
	}
	return true
}

// Verifier probes the freshly configured site over HTTP and optionally HTTPS.
type Verifier struct {
	client *http.Client
	logger logger.Logger
}

// New constructs a Verifier with the given probe timeout. Certificate chains
// are not validated here: issuance may have been skipped or the chain may
// still be propagating, and the probe only confirms the server answers.
func New(timeout time.Duration, log logger.Logger) *Verifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: log,
	}
}

// Verify probes the site. The HTTPS probe runs only when the operator
// requested a certificate.
func (v *Verifier) Verify(subdomain string, https bool) Result {
	result := Result{
		Plain:         v.probe("http://" + subdomain + "/"),
		SecureChecked: https,
	}

	if https {
		result.Secure = v.probe("https://" + subdomain + "/")
	}

	return result
}

func (v *Verifier) probe(url string) Outcome {
	start := time.Now()
	resp, err := v.client.Get(url)
	latency := time.Since(start)

	if err != nil {
		v.logger.Debug("Probe of %s failed: %v", url, err)
		return Outcome{Err: err, Latency: latency}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 400
	return Outcome{OK: ok, Status: resp.StatusCode, Latency: latency}
}

// Err converts a failed result into a verification error for exit-code
// mapping; a successful result yields nil.
func (r Result) Err(subdomain string) error {
	if r.Success() {
		return nil
	}
	return apperrors.VerificationError(
		apperrors.CodeVerifyProbe,
		"site verification failed for "+subdomain,
		nil,
	).WithModule("verifier").
		WithHint("inspect the server logs with: journalctl -u nginx --since -5m")
}
