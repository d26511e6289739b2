package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

var htmlTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1a1a1a; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 24px;">
    <h2 style="color: #003366;">{{.Subject}}</h2>
    {{range .Paragraphs}}<p style="line-height: 1.5;">{{.}}</p>
    {{end}}
  </div>
</body>
</html>
`))

// RenderHTML wraps a plain-text body in the default notification layout.
// Blank lines separate paragraphs.
func RenderHTML(subject, body string) string {
	paragraphs := make([]string, 0)
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Subject    string
		Paragraphs []string
	}{Subject: subject, Paragraphs: paragraphs})
	if err != nil {
		return "<p>" + template.HTMLEscapeString(body) + "</p>"
	}
	return buf.String()
}
