// Package frontmatter splits `---` delimited YAML metadata from markdown bodies.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

var delimiter = []byte("---")

// Split separates YAML frontmatter from the markdown body.
//
// If the document does not start with a `---` line, had is false and body is
// the full input. CRLF documents are handled transparently.
func Split(content []byte) (meta []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := append(append([]byte{}, delimiter...), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]

	// An immediately closing delimiter yields an empty metadata block.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := append(append(append([]byte{}, nl...), delimiter...), nl...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	meta = rest[:idx+len(nl)]
	body = rest[idx+len(closing):]
	return meta, body, true, nil
}

// Parse splits content and decodes the YAML metadata into a map.
// A document without frontmatter parses to an empty map.
func Parse(content []byte) (map[string]any, []byte, error) {
	meta, body, had, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	if !had || len(meta) == 0 {
		return map[string]any{}, body, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}

func detectNewline(content []byte) []byte {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return []byte("\r\n")
	}
	return []byte("\n")
}
