package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter_ValidBlock_ReturnsFieldsAndBody(t *testing.T) {
	raw := []byte("---\ntemplate: main\ntitle: Hello\n---\n# Heading\n\nBody text.\n")

	fields, body, err := ParseFrontMatter("page.md", raw)
	require.NoError(t, err)
	require.Equal(t, "main", fields["template"])
	require.Equal(t, "Hello", fields["title"])
	require.Equal(t, "# Heading\n\nBody text.", body)
}

func TestParseFrontMatter_EmptyBlock_ReturnsEmptyMap(t *testing.T) {
	fields, body, err := ParseFrontMatter("page.md", []byte("---\n---\nBody\n"))
	require.NoError(t, err)
	require.NotNil(t, fields)
	require.Empty(t, fields)
	require.Equal(t, "Body", body)
}

func TestParseFrontMatter_MissingOpeningDelimiter_ReturnsError(t *testing.T) {
	_, _, err := ParseFrontMatter("page.md", []byte("template: main\n---\nBody\n"))
	require.Error(t, err)

	var fmErr *FrontMatterError
	require.True(t, errors.As(err, &fmErr))
	require.Equal(t, "page.md", fmErr.Path)
}

func TestParseFrontMatter_UnterminatedBlock_ReturnsError(t *testing.T) {
	_, _, err := ParseFrontMatter("page.md", []byte("---\ntemplate: main\nBody\n"))
	require.Error(t, err)

	var fmErr *FrontMatterError
	require.True(t, errors.As(err, &fmErr))
}

func TestParseFrontMatter_InvalidYAML_ReturnsError(t *testing.T) {
	_, _, err := ParseFrontMatter("page.md", []byte("---\ntags: [unclosed\n---\nBody\n"))
	require.Error(t, err)

	var fmErr *FrontMatterError
	require.True(t, errors.As(err, &fmErr))
}

func TestParseFrontMatter_DelimiterInsideBody_StaysInBody(t *testing.T) {
	raw := []byte("---\ntemplate: main\n---\nabove\n\n---\n\nbelow\n")

	fields, body, err := ParseFrontMatter("page.md", raw)
	require.NoError(t, err)
	require.Equal(t, "main", fields["template"])
	require.Contains(t, body, "---")
	require.Contains(t, body, "below")
}

func TestParseFrontMatter_CRLFInput_Parses(t *testing.T) {
	raw := []byte("---\r\ntemplate: main\r\n---\r\nBody\r\n")

	fields, body, err := ParseFrontMatter("page.md", raw)
	require.NoError(t, err)
	require.Equal(t, "main", fields["template"])
	require.Equal(t, "Body", body)
}

func TestParseFrontMatter_DelimiterWithTrailingSpaces_NotClosing(t *testing.T) {
	_, _, err := ParseFrontMatter("page.md", []byte("---\ntemplate: main\n--- \nBody\n"))
	require.Error(t, err)
}

func TestSerializeFrontMatter_RoundTrip_PreservesFields(t *testing.T) {
	fields := map[string]any{
		"template": "main",
		"title":    "A post",
		"tags":     []any{"go", "web"},
		"extra":    map[string]any{"nested": true},
	}

	block, err := SerializeFrontMatter(fields)
	require.NoError(t, err)

	raw := append([]byte("---\n"), block...)
	raw = append(raw, []byte("---\nBody\n")...)

	reparsed, body, err := ParseFrontMatter("page.md", raw)
	require.NoError(t, err)
	require.Equal(t, fields, reparsed)
	require.Equal(t, "Body", body)
}

func TestSerializeFrontMatter_SortsKeys(t *testing.T) {
	a, err := SerializeFrontMatter(map[string]any{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)

	b, err := SerializeFrontMatter(map[string]any{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, "a: 1\nb: 2\nc: 3\n", string(a))
}

func TestSerializeFrontMatter_EmptyMap_EmitsNothing(t *testing.T) {
	out, err := SerializeFrontMatter(map[string]any{})
	require.NoError(t, err)
	require.Empty(t, out)
}
