package webserver

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

// vhostTemplate is the single-site HTTP server block. TLS directives are not
// rendered here; the certificate issuance client rewrites the file when a
// certificate is installed.
const vhostTemplate = `server {
    listen 80;
    listen [::]:80;

    server_name {{ .ServerName }};

    root {{ .DocumentRoot }};
    index index.html index.htm;

    access_log {{ .AccessLog }};
    error_log {{ .ErrorLog }};

    location / {
        try_files $uri $uri/ =404;
    }
}
`

// placeholderTemplate renders the landing page served until repository
// content replaces it.
const placeholderTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .ServerName }}</title>
</head>
<body>
  <h1>{{ .ServerName }}</h1>
  <p>This site was provisioned by site-deploy.</p>
  <p>Replace the contents of <code>{{ .DocumentRoot }}</code> to publish your site.</p>
</body>
</html>
`

// templateData carries the fields both templates consume.
type templateData struct {
	ServerName   string
	DocumentRoot string
	AccessLog    string
	ErrorLog     string
}

func renderTemplate(name, text string, data templateData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s template", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, "failed to render %s template", name)
	}
	return buf.Bytes(), nil
}
