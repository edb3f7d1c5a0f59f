package site

import (
	"os"
	"sort"
)

// LoadOptions control which content enters the site model.
type LoadOptions struct {
	// IncludeDrafts pulls _drafts into the post list. Draft posts are
	// indistinguishable from regular posts in templates except for is_draft.
	IncludeDrafts bool
}

// Site is the fully assembled content model of one project snapshot. It is
// built once per pass and read-only afterwards; renders receive it as the
// "site" mapping.
type Site struct {
	Layout    Layout
	Resources *Resources
	Config    *Config

	Pages []*Page

	// Posts are sorted newest first; equal timestamps keep file order.
	Posts []*Post

	Data map[string]any

	// Collections maps user data directory names (minus the underscore) to
	// their pages; Categories and Tags are the sorted unions over Posts.
	Collections map[string][]*Page
	Categories  []string
	Tags        []string
}

// Load scans the project below root and assembles the site model. Any
// malformed resource aborts the load with an error naming the file.
func Load(root string, opts LoadOptions) (*Site, error) {
	layout, err := NewLayout(root)
	if err != nil {
		return nil, err
	}

	resources, err := Scan(layout)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(resources.Config)
	if err != nil {
		return nil, err
	}

	data, err := loadData(resources.Data)
	if err != nil {
		return nil, err
	}

	s := &Site{
		Layout:      layout,
		Resources:   resources,
		Config:      cfg,
		Data:        data,
		Collections: map[string][]*Page{},
	}

	for _, res := range resources.Pages {
		fm, body, err := parseContentFile(res)
		if err != nil {
			return nil, err
		}
		page, err := newPage(res, fm, body)
		if err != nil {
			return nil, err
		}
		s.Pages = append(s.Pages, page)
	}

	postFiles := resources.Posts
	if opts.IncludeDrafts {
		postFiles = append(append([]Resource{}, postFiles...), resources.Drafts...)
	}
	for _, res := range postFiles {
		fm, body, err := parseContentFile(res)
		if err != nil {
			return nil, err
		}
		post, err := newPost(res, cfg, fm, body, res.Kind == KindDraft)
		if err != nil {
			return nil, err
		}
		s.Posts = append(s.Posts, post)
	}
	sort.SliceStable(s.Posts, func(i, j int) bool {
		return s.Posts[i].Date.Timestamp > s.Posts[j].Date.Timestamp
	})

	for _, name := range resources.Collections {
		for _, res := range resources.UserData[name] {
			fm, body, err := parseContentFile(res)
			if err != nil {
				return nil, err
			}
			page, err := newUserPage(res, fm, body)
			if err != nil {
				return nil, err
			}
			s.Collections[name] = append(s.Collections[name], page)
		}
	}

	s.Categories, s.Tags = postIndices(s.Posts)

	return s, nil
}

// Entities returns every renderable entity count, used for progress logging.
func (s *Site) Entities() int {
	n := len(s.Pages) + len(s.Posts)
	for _, pages := range s.Collections {
		n += len(pages)
	}
	return n
}

// Vars builds the "site" mapping handed to every render. Entity content here
// is the raw Markdown body; the rendered fragment of the current entity is
// bound through the "page" mapping instead.
func (s *Site) Vars() map[string]any {
	vars := map[string]any{}

	for name, pages := range s.Collections {
		vars[name] = pageVars(pages)
	}

	// Well-known keys win over user collections of the same name.
	vars["pages"] = pageVars(s.Pages)

	posts := make([]map[string]any, len(s.Posts))
	for i, p := range s.Posts {
		posts[i] = p.Vars(p.Content)
	}
	vars["posts"] = posts

	vars["data"] = s.Data
	vars["blog"] = map[string]any{
		"categories": s.Categories,
		"tags":       s.Tags,
	}
	vars["config"] = s.Config.contextMap()

	return vars
}

func pageVars(pages []*Page) []map[string]any {
	vars := make([]map[string]any, len(pages))
	for i, p := range pages {
		vars[i] = p.Vars(p.Content)
	}
	return vars
}

// postIndices aggregates the de-duplicated categories and tags of the given
// posts, sorted so enumeration order is stable run to run.
func postIndices(posts []*Post) (categories, tags []string) {
	seenCategories := map[string]struct{}{}
	seenTags := map[string]struct{}{}
	for _, p := range posts {
		for _, c := range p.Categories {
			seenCategories[c] = struct{}{}
		}
		for _, t := range p.Tags {
			seenTags[t] = struct{}{}
		}
	}

	categories = make([]string, 0, len(seenCategories))
	for c := range seenCategories {
		categories = append(categories, c)
	}
	tags = make([]string, 0, len(seenTags))
	for t := range seenTags {
		tags = append(tags, t)
	}
	sort.Strings(categories)
	sort.Strings(tags)
	return categories, tags
}

func parseContentFile(res Resource) (map[string]any, string, error) {
	raw, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, "", &BuildError{Path: res.Path, Msg: "cannot read source file", Err: err}
	}
	return ParseFrontMatter(res.Path, raw)
}
