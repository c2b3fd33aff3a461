package render

import (
	"html/template"
	"net/url"
	"strings"
)

// Funcs returns the helpers available to every template
func Funcs(mediaURL URLFunc) template.FuncMap {
	return template.FuncMap{
		"media": func(key string) string {
			if mediaURL == nil {
				return key
			}
			return mediaURL(key)
		},
		"linebreaksbr": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
		"truncatechars": func(n int, s string) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "…"
		},
		"pathescape": url.PathEscape,
	}
}
