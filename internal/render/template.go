package render

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"text/template"
)

// Autoescaping stays off on purpose: everything fed to the templates is the
// site author's own content, and page.content is already-rendered HTML.

const bodyTemplateName = "__content__"

var (
	// templateRefPattern finds literal {{template "name"}} and
	// {{block "name"}} references in template source.
	templateRefPattern = regexp.MustCompile(`\{\{-?\s*(?:template|block)\s+"([^"]+)"`)

	// templateDefPattern finds the names a source defines inline through
	// {{define "name"}} or {{block "name"}}.
	templateDefPattern = regexp.MustCompile(`\{\{-?\s*(?:define|block)\s+"([^"]+)"`)
)

// File is one template source handed to LoadTemplates. Name is the lookup
// name used by front matter, the file stem by convention.
type File struct {
	Name   string
	Path   string
	Source string
}

// Templates is a parsed template set plus the reference graph between its
// members. The graph attributes a changed template file to the names whose
// output can differ, which drives targeted rebuilds.
type Templates struct {
	root *template.Template

	paths map[string]string

	// includes lists the names referenced by each file; defines lists the
	// names each file contributes, the file's own name included. A file can
	// define names besides its own through {{define}} and {{block}}.
	includes map[string][]string
	defines  map[string][]string
}

// LoadTemplates parses all template files into one namespace, so templates
// can reference each other by name. Two files mapping to the same name is an
// error, lookups would be ambiguous.
func LoadTemplates(files []File) (*Templates, error) {
	t := &Templates{
		root:     template.New("root"),
		paths:    map[string]string{},
		includes: map[string][]string{},
		defines:  map[string][]string{},
	}

	for _, f := range files {
		if prev, ok := t.paths[f.Name]; ok {
			return nil, fmt.Errorf("template name %q is ambiguous: %s and %s", f.Name, prev, f.Path)
		}
		if _, err := t.root.New(f.Name).Parse(f.Source); err != nil {
			return nil, fmt.Errorf("%s: %v", f.Path, err)
		}
		t.paths[f.Name] = f.Path

		for _, match := range templateRefPattern.FindAllStringSubmatch(f.Source, -1) {
			t.includes[f.Name] = append(t.includes[f.Name], match[1])
		}
		t.defines[f.Name] = []string{f.Name}
		for _, match := range templateDefPattern.FindAllStringSubmatch(f.Source, -1) {
			t.defines[f.Name] = append(t.defines[f.Name], match[1])
		}
	}

	return t, nil
}

// Has reports whether name resolves to a template.
func (t *Templates) Has(name string) bool {
	return t.root.Lookup(name) != nil
}

// Path returns the source file a template name was loaded from.
func (t *Templates) Path(name string) string {
	return t.paths[name]
}

// Render evaluates the named template against vars.
func (t *Templates) Render(name string, vars any) (string, error) {
	var buf bytes.Buffer
	if err := t.root.ExecuteTemplate(&buf, name, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSource evaluates an ad-hoc template source against vars, with the
// whole template set in scope so content bodies can use {{template}} too. The
// set itself is never polluted, each call works on a clone.
func (t *Templates) RenderSource(source string, vars any) (string, error) {
	clone, err := t.root.Clone()
	if err != nil {
		return "", err
	}
	body, err := clone.New(bodyTemplateName).Parse(source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := body.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dependents resolves a changed template file to every template name whose
// rendered output can differ: the names the file defines, plus transitively
// everything defined by a file that references one of those names. Template
// invocations only take literal names, so the attribution is static and
// complete.
func (t *Templates) Dependents(fileName string) []string {
	reverse := map[string][]string{}
	for file, refs := range t.includes {
		for _, name := range refs {
			reverse[name] = append(reverse[name], file)
		}
	}

	affected := map[string]bool{}
	queue := append([]string(nil), t.defines[fileName]...)
	if len(queue) == 0 {
		queue = []string{fileName}
	}
	for _, name := range queue {
		affected[name] = true
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, file := range reverse[name] {
			for _, provided := range t.defines[file] {
				if !affected[provided] {
					affected[provided] = true
					queue = append(queue, provided)
				}
			}
		}
	}

	out := make([]string, 0, len(affected))
	for name := range affected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SourceRefs extracts the literal template names referenced by an arbitrary
// template source, content bodies included.
func SourceRefs(source string) []string {
	var names []string
	for _, match := range templateRefPattern.FindAllStringSubmatch(source, -1) {
		names = append(names, match[1])
	}
	return names
}
