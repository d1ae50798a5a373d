// Package web embeds the single-page admin panel served at /admin.
package web

import (
	"embed"
	"html/template"
)

// AdminTemplate is the template name rendered for GET /admin
const AdminTemplate = "admin.html"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// AdminPage is the data rendered into the admin template
type AdminPage struct {
	Title               string
	RegistrationEnabled bool
}
