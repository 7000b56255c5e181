package codegen

import "embed"

//go:embed templates/*.tmpl
var embeddedFS embed.FS
