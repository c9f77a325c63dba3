package schema

import (
	"io"

	"github.com/Masterminds/sprig"
	"github.com/alecthomas/template"
)

var reportTemplate = template.Must(
	template.New("report").Funcs(template.FuncMap(sprig.TxtFuncMap())).Parse(
		`{{ if .Violations }}schema {{ .Schema }} has {{ len .Violations }} violation(s):
{{ range .Violations }}  - {{ .String }}
{{ end }}{{ else }}schema {{ .Schema }} matches expected layout ({{ .Tables | join ", " }})
{{ end }}`))

// WriteReport renders a human readable summary of a verification run.
func WriteReport(w io.Writer, schemaName string, expectation Expectation, violations []Violation) error {
	return reportTemplate.Execute(w, struct {
		Schema     string
		Tables     []string
		Violations []Violation
	}{
		Schema:     schemaName,
		Tables:     expectation.TableNames(),
		Violations: violations,
	})
}
