package render

import (
	"io"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// OutputFilter post-processes rendered output on its way to disk. Writer
// wraps a sink for streamed copies, Bytes transforms in-memory output.
type OutputFilter interface {
	Writer(mediatype string, out io.WriteCloser) io.WriteCloser
	Bytes(mediatype string, b []byte) ([]byte, error)
}

var jsMediaTypes = regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$")

// Minifier strips whitespace from HTML, CSS and JS output.
type Minifier struct {
	m *minify.M
}

func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	m.AddFuncRegexp(jsMediaTypes, js.Minify)
	return &Minifier{m: m}
}

// Writer wraps out so writes are minified on the way through. Closing the
// returned writer flushes the minifier and closes out.
func (m *Minifier) Writer(mediatype string, out io.WriteCloser) io.WriteCloser {
	return &flushCloser{w: m.m.Writer(mediatype, out), out: out}
}

type flushCloser struct {
	w   io.WriteCloser
	out io.WriteCloser
}

func (f *flushCloser) Write(b []byte) (int, error) { return f.w.Write(b) }

func (f *flushCloser) Close() error {
	err := f.w.Close()
	if cerr := f.out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (m *Minifier) Bytes(mediatype string, b []byte) ([]byte, error) {
	return m.m.Bytes(mediatype, b)
}

// Passthrough leaves output untouched.
type Passthrough struct{}

func (Passthrough) Writer(mediatype string, out io.WriteCloser) io.WriteCloser {
	return out
}

func (Passthrough) Bytes(mediatype string, b []byte) ([]byte, error) {
	return b, nil
}
