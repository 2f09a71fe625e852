package verifier

import (
	"sitedeploy/internal/ui"
)

// ReportData carries everything the final summary presents.
type ReportData struct {
	Subdomain    string
	DocumentRoot string
	VhostPath    string
	RepoURL      string
	CertIssued   bool
	Result       Result
}

// WriteReport renders the deployment summary and, on failure, the
// troubleshooting hints an operator needs next.
func WriteReport(p *ui.Printer, data ReportData) {
	repo := data.RepoURL
	if repo == "" {
		repo = "none (placeholder page)"
	}

	rows := []ui.SummaryRow{
		{Label: "Site", Value: data.Subdomain, Good: true},
		{Label: "Document root", Value: data.DocumentRoot, Good: true},
		{Label: "Configuration", Value: data.VhostPath, Good: true},
		{Label: "Repository", Value: repo, Good: data.RepoURL != ""},
		{Label: "HTTP", Value: data.Result.Plain.Describe(), Good: data.Result.Plain.OK, Bad: !data.Result.Plain.OK},
	}

	if data.Result.SecureChecked {
		rows = append(rows, ui.SummaryRow{
			Label: "HTTPS",
			Value: data.Result.Secure.Describe(),
			Good:  data.Result.Secure.OK,
			Bad:   !data.Result.Secure.OK,
		})
		certValue := "not issued"
		if data.CertIssued {
			certValue = "issued"
		}
		rows = append(rows, ui.SummaryRow{
			Label: "Certificate",
			Value: certValue,
			Good:  data.CertIssued,
		})
	}

	title := "Deployment complete"
	if !data.Result.Success() {
		title = "Deployment finished with verification failures"
	}
	p.PrintSummary(title, rows)

	if data.Result.Success() {
		scheme := "http"
		if data.Result.SecureChecked {
			scheme = "https"
		}
		p.PrintHint("your site is live at " + scheme + "://" + data.Subdomain + "/")
		return
	}

	if !data.Result.Plain.OK {
		p.PrintHint("check that nginx is serving the site: curl -v http://" + data.Subdomain + "/")
		p.PrintHint("confirm DNS for " + data.Subdomain + " points at this host")
	}
	if data.Result.SecureChecked && !data.Result.Secure.OK {
		p.PrintHint("check the TLS listener: curl -vk https://" + data.Subdomain + "/")
	}
}
