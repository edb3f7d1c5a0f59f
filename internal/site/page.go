package site

import (
	"fmt"
	"path"
	"strings"
)

// Page is one renderable content file from _pages or a user data directory.
// Content is the raw Markdown body; the rendered HTML exists only inside a
// build pass, pages themselves are never mutated after construction.
type Page struct {
	SourcePath string
	Name       string
	Template   string

	// Permalink is the explicit output location override, "" when unset.
	Permalink string

	// URL always starts with "/" and, except for the root index, ends with
	// ".html".
	URL string

	Content string

	// Collection is the user data collection name, "" for regular pages.
	Collection string

	Extra map[string]any
}

func newPage(res Resource, fm map[string]any, body string) (*Page, error) {
	p := &Page{
		SourcePath: res.Path,
		Name:       res.Name(),
		Content:    body,
	}

	var err error
	if p.Template, err = requiredString(res.Path, fm, "template"); err != nil {
		return nil, err
	}

	if v, ok := fm["permalink"]; ok {
		permalink, err := stringValue(res.Path, "permalink", v)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(permalink, "/") {
			return nil, &FrontMatterError{Path: res.Path, Msg: "'permalink' must start with '/'"}
		}
		if permalink == "/" {
			return nil, &FrontMatterError{
				Path: res.Path,
				Msg:  "'permalink' must not be \"/\", that is already the root index page",
			}
		}
		p.Permalink = permalink
		p.URL = permalink + ".html"
	} else {
		p.URL = pageURL(res.Rel)
	}

	p.Extra = extraKeys(fm, "template", "permalink")
	return p, nil
}

// newUserPage builds a page from a user data directory. User data pages get
// their URL from the collection name, so overriding it makes no sense.
func newUserPage(res Resource, fm map[string]any, body string) (*Page, error) {
	p := &Page{
		SourcePath: res.Path,
		Name:       res.Name(),
		Content:    body,
		Collection: res.Collection,
		URL:        "/" + res.Collection + "/" + res.Name() + ".html",
	}

	var err error
	if p.Template, err = requiredString(res.Path, fm, "template"); err != nil {
		return nil, err
	}

	if _, ok := fm["permalink"]; ok {
		return nil, &FrontMatterError{
			Path: res.Path,
			Msg:  "permalinks are not allowed for user data pages",
		}
	}

	p.Extra = extraKeys(fm, "template")
	return p, nil
}

// pageURL derives the output URL from the path below _pages. An index file
// addresses its own directory; the root index is the site root itself.
func pageURL(rel string) string {
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	if stem == "index" {
		return "/"
	}
	return "/" + stem + ".html"
}

// Vars builds the template-visible mapping for this page, with content bound
// to the given string. Derived keys always win over front-matter keys of the
// same name.
func (p *Page) Vars(content string) map[string]any {
	vars := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		vars[k] = v
	}
	vars["name"] = p.Name
	vars["template"] = p.Template
	vars["url"] = p.URL
	if p.Permalink != "" {
		vars["permalink"] = p.Permalink
	}
	vars["content"] = content
	vars["source_file"] = p.SourcePath
	return vars
}

func requiredString(path string, fm map[string]any, key string) (string, error) {
	v, ok := fm[key]
	if !ok {
		return "", &FrontMatterError{Path: path, Msg: "missing '" + key + "' key in front matter"}
	}
	return stringValue(path, key, v)
}

func stringValue(path, key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &FrontMatterError{
			Path: path,
			Msg:  fmt.Sprintf("expected a string for key '%s', got %T", key, v),
		}
	}
	return s, nil
}

func extraKeys(fm map[string]any, consumed ...string) map[string]any {
	extra := make(map[string]any, len(fm))
	for k, v := range fm {
		extra[k] = v
	}
	for _, k := range consumed {
		delete(extra, k)
	}
	return extra
}
