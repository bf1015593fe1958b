// Package compute declares the demo compute units and renders their
// bootstrap payloads. Payloads are fixed shell/HTML templates filled
// with resolved parameters; a substitution failure aborts the run
// before the instance is declared.
package compute

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// PageData feeds the bootstrap payload template. Every field is
// resolved before rendering; the template performs no validation of
// its own.
type PageData struct {
	Title         string
	AppName       string
	Environment   string
	Stack         string
	InstanceIndex int // 1-based
	InstanceCount int
	InstanceType  string
	// Notes renders as an extra bullet list on the demo page.
	Notes []string
}

var bootstrapTemplate = template.Must(template.New("bootstrap").Parse(`#!/bin/bash
yum update -y
yum install -y httpd
systemctl start httpd
systemctl enable httpd

cat > /var/www/html/index.html << 'EOF'
<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body style="font-family: Arial; margin: 40px; background: #f0f8ff;">
    <h1>{{.Title}}</h1>
    <div style="background: white; padding: 20px; border-radius: 8px;">
        <ul>
            <li><strong>Application:</strong> {{.AppName}}</li>
            <li><strong>Environment:</strong> {{.Environment}}</li>
            <li><strong>Stack:</strong> {{.Stack}}</li>
            <li><strong>Instance:</strong> {{.InstanceIndex}} of {{.InstanceCount}} ({{.InstanceType}})</li>
        </ul>
{{- if .Notes}}
        <ul>
{{- range .Notes}}
            <li>{{.}}</li>
{{- end}}
        </ul>
{{- end}}
        <p><em>Deployed declaratively with Pulumi.</em></p>
    </div>
</body>
</html>
EOF

chown apache:apache /var/www/html/index.html
`))

// WebPage renders the bootstrap script that installs a web server and
// writes the demo page.
func WebPage(d PageData) (string, error) {
	var buf bytes.Buffer
	if err := bootstrapTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render bootstrap payload: %w", err)
	}
	return buf.String(), nil
}

// WithSecrets appends an application config file built from secret
// outputs to a rendered bootstrap script. The combined payload stays
// secret-tainted, so the engine never displays it in plaintext.
func WithSecrets(script string, dbPassword, apiKey pulumi.StringOutput) pulumi.StringOutput {
	return pulumi.All(dbPassword, apiKey).ApplyT(func(vals []interface{}) string {
		return script + fmt.Sprintf(`
cat > /etc/app-config.conf << 'APPCONF'
[database]
password=%s

[api]
key=%s
APPCONF
chmod 600 /etc/app-config.conf
`, vals[0].(string), vals[1].(string))
	}).(pulumi.StringOutput)
}
