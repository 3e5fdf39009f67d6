package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, had is false
// and body is the full input. A closing delimiter on the last line without a
// trailing newline is accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	delim := []byte("---")
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	closeLine := []byte("---" + nl)
	switch {
	case bytes.HasPrefix(rest, closeLine):
		return []byte{}, rest[len(closeLine):], true, nil
	case bytes.Equal(rest, delim):
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}

	closeEOF := []byte(nl + "---")
	if bytes.HasSuffix(rest, closeEOF) {
		end := len(rest) - len(closeEOF)
		return rest[:end+len(nl)], []byte{}, true, nil
	}

	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
//
// A block whose top level is not a mapping yields an empty map; only invalid
// YAML is an error. Non-string top-level keys are formatted with fmt.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var doc any
	if err := yaml.Unmarshal(frontmatter, &doc); err != nil {
		return nil, err
	}

	switch m := doc.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		fields := make(map[string]any, len(m))
		for k, v := range m {
			fields[fmt.Sprint(k)] = v
		}
		return fields, nil
	default:
		return map[string]any{}, nil
	}
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// detectNewline reports the line ending used by the first line of content.
func detectNewline(content []byte) string {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}

	return newline
}
