package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/cost-planner/pkg/services/config"
)

const settingsTemplate = `Estimator API: {{.APIURL}}
LLM:           {{.LLM}}
Gemini key:    {{mask .GeminiAPIKey}}
Infracost key: {{mask .InfracostAPIKey}}
Profile:       {{.Profile}}
Database:      {{.DBPath}}
Server:        {{.Address}}
{{- if .NormalizationRules}}
Normalization rules:
{{- range $type, $rule := .NormalizationRules}}
  {{$type}}: {{$rule.Field}} / {{$rule.Divisor}}
{{- end}}
{{- end}}
`

// SettingsReporter prints resolved settings with secrets masked.
type SettingsReporter struct {
	writer io.Writer
	tmpl   *template.Template
}

func NewSettingsReporter(writer io.Writer) (*SettingsReporter, error) {
	if writer == nil {
		writer = os.Stdout
	}

	tmpl, err := template.New("settings").Funcs(template.FuncMap{"mask": mask}).Parse(settingsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &SettingsReporter{writer: writer, tmpl: tmpl}, nil
}

func (r *SettingsReporter) Handle(settings *config.Settings) error {
	return r.tmpl.Execute(r.writer, settings)
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
