package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/value"
)

// Canonical serializes the front matter into YAML bytes (without delimiters).
//
// Keys are sorted at every level. Recognized keys are emitted only when set,
// so two files that differ only in key order or formatting serialize equally.
// An empty front matter serializes to an empty slice.
func (fm FrontMatter) Canonical() ([]byte, error) {
	m := make(value.Map, len(fm.Extra)+3)
	for k, v := range fm.Extra {
		m[k] = v
	}
	if fm.Title != nil {
		m[KeyTitle] = value.String(*fm.Title)
	}
	if fm.Layout != nil {
		m[KeyLayout] = value.String(*fm.Layout)
	}
	if fm.Lang != nil {
		m[KeyLang] = value.String(*fm.Lang)
	}
	return SerializeYAML(m)
}

// SerializeYAML encodes a value map as block YAML with two-space indentation.
func SerializeYAML(m value.Map) ([]byte, error) {
	if len(m) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapNode(m)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mapNode(m value.Map) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range m.Keys() {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			node(m[k]),
		)
	}
	return n
}

func node(v value.Value) *yaml.Node {
	switch vv := v.(type) {
	case value.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(vv)}
	case value.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(vv), 10)}
	case value.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(float64(vv), 'g', -1, 64)}
	case value.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(vv))}
	case value.Seq:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range vv {
			seq.Content = append(seq.Content, node(item))
		}
		return seq
	case value.Map:
		return mapNode(vv)
	case value.Null, nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v.Interface())}
	}
}
