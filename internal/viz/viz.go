// Package viz turns model-generated HTML into a viewable artifact. The
// generated document is never opened directly: it is embedded through a
// host page whose iframe forbids same-origin access, top navigation and
// form submission, allowing scripts only. That boundary is the whole point
// of this package.
package viz

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	xhtml "golang.org/x/net/html"

	"astrochat/internal/logging"
)

// hostPage embeds the artifact via srcdoc so the inner document has no
// origin of its own. sandbox lists only allow-scripts; everything else
// stays denied.
const hostPage = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  html, body { margin: 0; height: 100%%; background: #020617; }
  iframe { border: 0; width: 100%%; height: 100%%; }
</style>
</head>
<body>
<iframe sandbox="allow-scripts" title="%s" srcdoc="%s"></iframe>
</body>
</html>
`

// Validate checks that the artifact is a parseable HTML document with an
// <html> element. The model occasionally returns prose or a bare fragment;
// rejecting those here keeps garbage out of the host page.
func Validate(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("viz: empty artifact")
	}
	if _, err := xhtml.Parse(strings.NewReader(code)); err != nil {
		return fmt.Errorf("viz: artifact does not parse as HTML: %w", err)
	}
	if !strings.Contains(strings.ToLower(code), "<html") {
		return fmt.Errorf("viz: artifact has no <html> element")
	}
	return nil
}

// HostDocument wraps a validated artifact in the sandboxed host page.
// title names the visualized event; lang is the UI language tag.
func HostDocument(code, title, lang string) string {
	return fmt.Sprintf(hostPage,
		html.EscapeString(lang),
		html.EscapeString(title),
		html.EscapeString(title),
		html.EscapeString(code),
	)
}

// WriteArtifact validates code, wraps it and writes the host page to a
// temp file, returning its path for a browser to open.
func WriteArtifact(code, title, lang string) (string, error) {
	if err := Validate(code); err != nil {
		return "", err
	}
	doc := HostDocument(code, title, lang)
	f, err := os.CreateTemp("", "astrochat-viz-*.html")
	if err != nil {
		return "", fmt.Errorf("viz: create artifact file: %w", err)
	}
	if _, err := f.WriteString(doc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("viz: write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("viz: close artifact: %w", err)
	}
	logging.UI("visualization artifact written: %s", filepath.Base(f.Name()))
	return f.Name(), nil
}

// removeArtifact deletes a host page; a missing file is not an error.
func removeArtifact(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.UI("remove artifact %s: %v", filepath.Base(path), err)
	}
}
