package api

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed static/*.html
var apiStaticFS embed.FS

var pageFuncs = template.FuncMap{
	"bold": markdownBold,
}

var (
	loginTemplate     = template.Must(template.New("login.html").Funcs(pageFuncs).ParseFS(apiStaticFS, "static/login.html"))
	dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(pageFuncs).ParseFS(apiStaticFS, "static/dashboard.html"))
)

// markdownBold escapes s and turns **text** runs into <strong>.
func markdownBold(s string) template.HTML {
	parts := strings.Split(s, "**")
	var b strings.Builder
	for i, p := range parts {
		p = template.HTMLEscapeString(p)
		// an unmatched trailing ** stays literal
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString("<strong>" + p + "</strong>")
			continue
		}
		if i%2 == 1 {
			b.WriteString("**")
		}
		b.WriteString(p)
	}
	return template.HTML(b.String()) //nolint:gosec // pieces are escaped above
}
