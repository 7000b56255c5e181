package skills

import "embed"

//go:embed templates/SKILL.md.tmpl
var embeddedFS embed.FS
