package site

import (
	"fmt"
	"time"
)

// Post is a dated content file from _posts or _drafts. The date part of the
// timestamp always comes from the file name; front matter can only refine the
// time of day and the timezone.
type Post struct {
	SourcePath string

	// Name is the slug, the file stem with the date prefix stripped.
	Name     string
	Template string
	Title    string

	// URL is /YYYY/MM/DD/<slug>.html; BaseAddress is the YYYY/MM/DD part.
	URL         string
	BaseAddress string

	Content    string
	Date       DateInfo
	Categories []string
	Tags       []string
	IsDraft    bool

	Extra map[string]any
}

func newPost(res Resource, cfg *Config, fm map[string]any, body string, draft bool) (*Post, error) {
	match := postFilePattern.FindStringSubmatch(res.Name())
	if match == nil {
		return nil, &ConfigurationError{Path: res.Path, Msg: "file name must look like YYYY-MM-DD-<name>"}
	}
	day, slug := match[1], match[2]

	p := &Post{
		SourcePath: res.Path,
		Name:       slug,
		Content:    body,
		IsDraft:    draft,
	}

	var err error
	if p.Template, err = requiredString(res.Path, fm, "template"); err != nil {
		return nil, err
	}
	if p.Title, err = requiredString(res.Path, fm, "title"); err != nil {
		return nil, err
	}

	if _, ok := fm["permalink"]; ok {
		return nil, &FrontMatterError{Path: res.Path, Msg: "'permalink' is not allowed on posts"}
	}

	clock := "00:00:00"
	if v, ok := fm["time"]; ok {
		if clock, err = stringValue(res.Path, "time", v); err != nil {
			return nil, err
		}
	}

	zone := cfg.Timezone
	if zone == "" {
		zone = DefaultTimezone
	}
	if v, ok := fm["timezone"]; ok {
		if zone, err = stringValue(res.Path, "timezone", v); err != nil {
			return nil, err
		}
	}

	composed := day + " " + clock + " " + zone
	t, err := time.Parse(postDateLayout, composed)
	if err != nil {
		return nil, &FrontMatterError{
			Path: res.Path,
			Msg:  fmt.Sprintf("invalid post date %q", composed),
			Err:  err,
		}
	}
	p.Date = newDateInfo(t)

	p.BaseAddress = p.Date.Year + "/" + p.Date.MonthPadded + "/" + p.Date.DayPadded
	p.URL = "/" + p.BaseAddress + "/" + slug + ".html"

	if p.Categories, err = stringList(res.Path, fm, "categories"); err != nil {
		return nil, err
	}
	if p.Tags, err = stringList(res.Path, fm, "tags"); err != nil {
		return nil, err
	}

	p.Extra = extraKeys(fm, "template", "title", "permalink", "time", "timezone", "categories", "tags")
	return p, nil
}

// Vars builds the template-visible mapping for this post, with content bound
// to the given string. Derived keys always win over front-matter keys of the
// same name, so "is_draft: false" in a draft's front matter changes nothing.
func (p *Post) Vars(content string) map[string]any {
	vars := make(map[string]any, len(p.Extra)+10)
	for k, v := range p.Extra {
		vars[k] = v
	}
	vars["name"] = p.Name
	vars["template"] = p.Template
	vars["title"] = p.Title
	vars["url"] = p.URL
	vars["base_address"] = p.BaseAddress
	vars["content"] = content
	vars["is_draft"] = p.IsDraft
	vars["date"] = p.Date.contextMap()
	vars["categories"] = p.Categories
	vars["tags"] = p.Tags
	vars["source_file"] = p.SourcePath
	return vars
}

func stringList(path string, fm map[string]any, key string) ([]string, error) {
	v, ok := fm[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &FrontMatterError{
			Path: path,
			Msg:  fmt.Sprintf("expected a list for key '%s', got %T", key, v),
		}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, &FrontMatterError{
				Path: path,
				Msg:  fmt.Sprintf("expected strings in '%s', got %T", key, item),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
