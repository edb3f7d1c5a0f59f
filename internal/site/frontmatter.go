package site

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

var (
	errNoFrontMatter           = errors.New("missing front matter")
	errUnterminatedFrontMatter = errors.New("front matter is never closed (missing '---' line)")
)

// splitFrontMatter separates the front-matter block from the body. The block
// is the text strictly between the first line `---` and the next line that is
// exactly `---`; everything after the closing delimiter is body. Input is
// expected to be newline-normalized already.
func splitFrontMatter(raw []byte) (fm, body []byte, err error) {
	lines := bytes.SplitAfter(raw, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimRight(lines[0], "\n"), frontMatterDelim) {
		return nil, nil, errNoFrontMatter
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if bytes.Equal(bytes.TrimRight(line, "\n"), frontMatterDelim) {
			fm = raw[len(lines[0]):offset]
			body = raw[offset+len(line):]
			return fm, body, nil
		}
		offset += len(line)
	}
	return nil, nil, errUnterminatedFrontMatter
}

// ParseFrontMatter splits a content file into its front-matter mapping and its
// body. The mapping is parsed as YAML; an empty block yields an empty map. The
// body is returned with surrounding whitespace trimmed, Markdown untouched.
func ParseFrontMatter(path string, raw []byte) (map[string]any, string, error) {
	raw = normalizeNewlines(raw)

	block, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, "", &FrontMatterError{Path: path, Msg: err.Error()}
	}

	var fields map[string]any
	if err := yaml.Unmarshal(block, &fields); err != nil {
		return nil, "", &FrontMatterError{Path: path, Msg: "invalid YAML in front matter", Err: err}
	}
	if fields == nil {
		fields = map[string]any{}
	}

	return fields, strings.TrimSpace(string(body)), nil
}

// SerializeFrontMatter renders a front-matter mapping back to YAML with keys
// sorted, so that equal mappings always serialize identically.
func SerializeFrontMatter(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	node, err := yamlNode(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(v any) (*yaml.Node, error) {
	if m, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			valNode, err := yamlNode(m[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

var crlf = []byte("\r\n")

func normalizeNewlines(b []byte) []byte {
	if !bytes.Contains(b, crlf) {
		return b
	}
	return bytes.ReplaceAll(b, crlf, []byte("\n"))
}
