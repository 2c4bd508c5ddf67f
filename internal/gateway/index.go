// ABOUTME: API overview page served at the root path
// ABOUTME: Renders embedded Markdown to HTML once at startup with goldmark

package gateway

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed docs/index.md
var docsFS embed.FS

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>bestiary</title>
</head>
<body>
{{.}}
</body>
</html>
`))

// renderIndex converts the embedded overview to a complete HTML page
func renderIndex() ([]byte, error) {
	md, err := docsFS.ReadFile("docs/index.md")
	if err != nil {
		return nil, fmt.Errorf("reading index markdown: %w", err)
	}

	var body bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("converting index markdown: %w", err)
	}

	var page bytes.Buffer
	if err := indexTemplate.Execute(&page, template.HTML(body.String())); err != nil {
		return nil, fmt.Errorf("rendering index page: %w", err)
	}
	return page.Bytes(), nil
}

// registerIndex serves the overview at exactly "/"
func (g *Gateway) registerIndex(mux *http.ServeMux) error {
	page, err := renderIndex()
	if err != nil {
		return err
	}

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	})
	return nil
}
