package util

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Data holds variables for template rendering.
type Data map[string]interface{}

// RenderString parses and renders tmplStr with the given variables.
// Used for command templates whose placeholders are filled from the
// shared run context (e.g. "{{ .binary }} --version").
func RenderString(tmplStr string, variables Data) (string, error) {
	tmpl, err := template.New("inline").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template %q", tmplStr)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", errors.Wrapf(err, "failed to render template %q", tmplStr)
	}
	return buf.String(), nil
}

// TruncateString shortens s to maxLength runes, appending ellipsis when
// truncation happened. maxLength <= 0 means no truncation.
func TruncateString(s string, maxLength int, ellipsis string) string {
	if maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= len([]rune(ellipsis)) {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-len([]rune(ellipsis))]) + ellipsis
}

// FirstNonEmpty returns the first non-empty string in strs, or "".
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}

// CombineErrors joins multiple errors into one. Nil entries are dropped;
// returns nil when nothing is left.
func CombineErrors(errs ...error) error {
	var msgs []string
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		msgs = append(msgs, err.Error())
	}
	if first == nil {
		return nil
	}
	if len(msgs) == 1 {
		return first
	}
	return errors.Errorf("multiple errors: %s", strings.Join(msgs, "; "))
}
