package render

import (
	"os"
	"path/filepath"
	"strings"

	godartsass "github.com/bep/godartsass/v2"
)

// StylesheetCompiler turns one Sass/SCSS source file into compressed CSS.
type StylesheetCompiler interface {
	Compile(path string) (string, error)
	Close() error
}

// DartSass compiles through the embedded Dart Sass protocol. The compiler
// process is started on first use, so projects without Sass sources never
// need the binary installed.
type DartSass struct {
	includeDir string
	transpiler *godartsass.Transpiler
}

// NewDartSass returns a compiler resolving @use/@import against includeDir.
func NewDartSass(includeDir string) *DartSass {
	return &DartSass{includeDir: includeDir}
}

func (d *DartSass) Compile(path string) (string, error) {
	if d.transpiler == nil {
		transpiler, err := godartsass.Start(godartsass.Options{})
		if err != nil {
			return "", err
		}
		d.transpiler = transpiler
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.ToLower(filepath.Ext(path)) == ".sass" {
		syntax = godartsass.SourceSyntaxSASS
	}

	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       string(src),
		URL:          "file://" + filepath.ToSlash(path),
		IncludePaths: []string{d.includeDir},
		OutputStyle:  godartsass.OutputStyleCompressed,
		SourceSyntax: syntax,
	})
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

func (d *DartSass) Close() error {
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}
