// Package render wraps the external engines the build pipeline drives:
// Markdown conversion, template evaluation, Sass compilation, image resizing
// and output minification. The build logic only sees the narrow interfaces
// defined here.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Markdown converts Markdown fragments to HTML. Raw HTML in the source is
// passed through untouched, content files are trusted input.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds the converter. A non-empty style enables syntax
// highlighting of fenced code blocks with colors inlined into the HTML, so no
// extra stylesheet is needed. Unknown style names are rejected.
func NewMarkdown(style string) (*Markdown, error) {
	extensions := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		emoji.Emoji,
	}

	if style != "" {
		if _, ok := styles.Registry[style]; !ok {
			return nil, fmt.Errorf(
				"style %q is not a valid highlighting style (%s)",
				style, strings.Join(styles.Names(), ", "),
			)
		}
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
		))
	}

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}, nil
}

// Convert renders a Markdown string to an HTML fragment.
func (m *Markdown) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
