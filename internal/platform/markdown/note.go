package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Field is one frontmatter entry. Notes keep fields in insertion order so a
// re-export produces a stable diff.
type Field struct {
	Key   string
	Value any
}

type Note struct {
	Meta []Field
	Body string
}

// Parse splits a note into frontmatter and body. A note without a leading
// fence is all body. CRLF line endings are normalized.
func Parse(content string) (Note, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fence) {
		return Note{Body: content}, nil
	}
	rest := strings.TrimPrefix(content, fence)
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return Note{}, fmt.Errorf("invalid frontmatter: missing closing fence")
	}

	doc := yaml.Node{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &doc); err != nil {
		return Note{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	note := Note{Body: rest[idx+len("\n"+fence):]}
	if len(doc.Content) == 0 {
		return note, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return Note{}, fmt.Errorf("invalid frontmatter: expected a mapping")
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		var value any
		if err := mapping.Content[i+1].Decode(&value); err != nil {
			return Note{}, fmt.Errorf("decode frontmatter %q: %w", mapping.Content[i].Value, err)
		}
		note.Meta = append(note.Meta, Field{Key: mapping.Content[i].Value, Value: value})
	}
	return note, nil
}

// Get returns the value stored under key.
func (n Note) Get(key string) (any, bool) {
	for _, f := range n.Meta {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces key in place or appends it.
func (n *Note) Set(key string, value any) {
	for i := range n.Meta {
		if n.Meta[i].Key == key {
			n.Meta[i].Value = value
			return
		}
	}
	n.Meta = append(n.Meta, Field{Key: key, Value: value})
}

func (n *Note) Delete(key string) {
	kept := n.Meta[:0]
	for _, f := range n.Meta {
		if f.Key != key {
			kept = append(kept, f)
		}
	}
	n.Meta = kept
}

func (n Note) Render() (string, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range n.Meta {
		value := &yaml.Node{}
		if err := value.Encode(f.Value); err != nil {
			return "", fmt.Errorf("encode frontmatter %q: %w", f.Key, err)
		}
		mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Key}, value)
	}

	buf := bytes.Buffer{}
	buf.WriteString(fence)
	if len(n.Meta) > 0 {
		raw, err := yaml.Marshal(mapping)
		if err != nil {
			return "", fmt.Errorf("marshal frontmatter: %w", err)
		}
		buf.Write(raw)
	}
	buf.WriteString(fence)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}
