package migration

import (
	"io"

	"github.com/Masterminds/sprig"
	"github.com/alecthomas/template"
)

var scriptTemplate = template.Must(
	template.New("script").Funcs(template.FuncMap(sprig.TxtFuncMap())).Parse(
		`{{ range $script := .Scripts }}-- migration {{ $script.Version }}: {{ $script.Name }}
{{ if $.Transaction }}begin;

{{ end }}{{ range $script.Statements }}-- {{ .Name }}
{{ .SQL | trim | replace "\n\t\t\t" "\n" }};

{{ end }}{{ if $.Transaction }}commit;

{{ end }}{{ end }}`))

type RenderOptions struct {
	// Wrap each script in begin/commit, matching how goose applies it
	Transaction bool
}

// Render writes scripts as plain SQL, for operators who would rather apply a migration
// with psql than with jobdb. Scripts are guarded, so the output can be run against a
// database jobdb has already migrated.
func Render(w io.Writer, opts RenderOptions, scripts ...Script) error {
	return scriptTemplate.Execute(w, struct {
		RenderOptions
		Scripts []Script
	}{
		RenderOptions: opts,
		Scripts:       scripts,
	})
}
