package site

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Reserved project directories. Every other underscore-prefixed directory at
// the project root is a user-defined data directory.
const (
	TemplatesDir   = "_templates"
	PagesDir       = "_pages"
	PostsDir       = "_posts"
	DraftsDir      = "_drafts"
	DataDir        = "_data"
	AssetsDir      = "_assets"
	StylesheetsDir = "_css"
	ScriptsDir     = "_js"
	BuildDir       = "_site"

	// ConfigFile is the one special file inside DataDir.
	ConfigFile = "config.json"
)

var reservedDirs = []string{
	TemplatesDir, PagesDir, PostsDir, DraftsDir,
	DataDir, AssetsDir, StylesheetsDir, ScriptsDir, BuildDir,
}

// postFilePattern matches "YYYY-MM-DD-<slug>" post basenames (extension
// already stripped). Date validity is checked when the post is parsed.
var postFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// Layout resolves the well-known directories of a project.
type Layout struct {
	Root string
}

// NewLayout validates that root exists and is a directory.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, &ConfigurationError{Path: root, Msg: "cannot resolve project directory", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Layout{}, &ConfigurationError{Path: root, Msg: "project directory does not exist", Err: err}
	}
	if !info.IsDir() {
		return Layout{}, &ConfigurationError{Path: root, Msg: "project path is not a directory"}
	}
	return Layout{Root: abs}, nil
}

func (l Layout) Templates() string   { return filepath.Join(l.Root, TemplatesDir) }
func (l Layout) Pages() string       { return filepath.Join(l.Root, PagesDir) }
func (l Layout) Posts() string       { return filepath.Join(l.Root, PostsDir) }
func (l Layout) Drafts() string      { return filepath.Join(l.Root, DraftsDir) }
func (l Layout) Data() string        { return filepath.Join(l.Root, DataDir) }
func (l Layout) Assets() string      { return filepath.Join(l.Root, AssetsDir) }
func (l Layout) Stylesheets() string { return filepath.Join(l.Root, StylesheetsDir) }
func (l Layout) Scripts() string     { return filepath.Join(l.Root, ScriptsDir) }
func (l Layout) Build() string       { return filepath.Join(l.Root, BuildDir) }
func (l Layout) Config() string      { return filepath.Join(l.Data(), ConfigFile) }

// IsReserved reports whether name is one of the well-known directories.
func IsReserved(name string) bool {
	for _, d := range reservedDirs {
		if name == d {
			return true
		}
	}
	// Staging and backup directories of the output writer.
	return strings.HasPrefix(name, BuildDir+".")
}

// Kind classifies a scanned file by the role it plays in the build.
type Kind int

const (
	KindTemplate Kind = iota
	KindPage
	KindPost
	KindDraft
	KindData
	KindConfig
	KindAsset
	KindImage
	KindStylesheet
	KindScript
	KindUserData
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindPage:
		return "page"
	case KindPost:
		return "post"
	case KindDraft:
		return "draft"
	case KindData:
		return "data"
	case KindConfig:
		return "config"
	case KindAsset:
		return "asset"
	case KindImage:
		return "image"
	case KindStylesheet:
		return "stylesheet"
	case KindScript:
		return "script"
	case KindUserData:
		return "user data"
	}
	return "unknown"
}

// Resource is one classified source file.
type Resource struct {
	Kind Kind

	// Path is the absolute location on disk; Rel is the slash-separated path
	// relative to the resource's category directory.
	Path string
	Rel  string

	// Collection is set for KindUserData resources only.
	Collection string
}

// Name returns the file name without its extension.
func (r Resource) Name() string {
	base := filepath.Base(r.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resources is the classified inventory of one project scan. Slices are in
// lexical walk order, which makes every downstream stage deterministic.
type Resources struct {
	Templates   []Resource
	Pages       []Resource
	Posts       []Resource
	Drafts      []Resource
	Data        []Resource
	Config      *Resource
	Assets      []Resource
	Images      []Resource
	Stylesheets []Resource
	Scripts     []Resource

	UserData    map[string][]Resource
	Collections []string
}

// Paths flattens the inventory into the list of source files a build reads.
// Drafts are listed only when they take part in the build.
func (r *Resources) Paths(includeDrafts bool) []string {
	var out []string
	add := func(rs []Resource) {
		for _, res := range rs {
			out = append(out, res.Path)
		}
	}
	add(r.Templates)
	add(r.Pages)
	add(r.Posts)
	if includeDrafts {
		add(r.Drafts)
	}
	add(r.Data)
	if r.Config != nil {
		out = append(out, r.Config.Path)
	}
	add(r.Assets)
	add(r.Images)
	add(r.Stylesheets)
	add(r.Scripts)
	for _, name := range r.Collections {
		add(r.UserData[name])
	}
	return out
}

// Scan walks the project tree and classifies every relevant file. Files that
// match no category (a README at the root, a .txt inside _css) are ignored;
// files that are in the right place but malformed fail the scan.
func Scan(layout Layout) (*Resources, error) {
	res := &Resources{UserData: map[string][]Resource{}}

	entries, err := os.ReadDir(layout.Root)
	if err != nil {
		return nil, &ConfigurationError{Path: layout.Root, Msg: "cannot read project directory", Err: err}
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		name := entry.Name()
		if name == BuildDir || strings.HasPrefix(name, BuildDir+".") {
			continue
		}

		dir := filepath.Join(layout.Root, name)
		switch name {
		case TemplatesDir:
			err = scanDir(dir, func(r Resource) error {
				r.Kind = KindTemplate
				res.Templates = append(res.Templates, r)
				return nil
			})
		case PagesDir:
			err = scanDir(dir, func(r Resource) error {
				if !isMarkdown(r.Path) {
					return nil
				}
				r.Kind = KindPage
				res.Pages = append(res.Pages, r)
				return nil
			})
		case PostsDir:
			err = scanDir(dir, collectPosts(KindPost, &res.Posts))
		case DraftsDir:
			err = scanDir(dir, collectPosts(KindDraft, &res.Drafts))
		case DataDir:
			err = scanDir(dir, func(r Resource) error {
				if strings.ToLower(filepath.Ext(r.Path)) != ".json" {
					return &ConfigurationError{Path: r.Path, Msg: "only JSON files are allowed in " + DataDir}
				}
				if r.Rel == ConfigFile {
					cfg := r
					cfg.Kind = KindConfig
					res.Config = &cfg
					return nil
				}
				r.Kind = KindData
				res.Data = append(res.Data, r)
				return nil
			})
		case AssetsDir:
			err = scanDir(dir, func(r Resource) error {
				if IsImage(r.Path) {
					r.Kind = KindImage
					res.Images = append(res.Images, r)
				} else {
					r.Kind = KindAsset
					res.Assets = append(res.Assets, r)
				}
				return nil
			})
		case StylesheetsDir:
			err = scanDir(dir, func(r Resource) error {
				if !isStylesheet(r.Path) {
					return nil
				}
				r.Kind = KindStylesheet
				res.Stylesheets = append(res.Stylesheets, r)
				return nil
			})
		case ScriptsDir:
			err = scanDir(dir, func(r Resource) error {
				if strings.ToLower(filepath.Ext(r.Path)) != ".js" {
					return nil
				}
				r.Kind = KindScript
				res.Scripts = append(res.Scripts, r)
				return nil
			})
		default:
			collection := strings.TrimPrefix(name, "_")
			err = scanDir(dir, func(r Resource) error {
				if !isMarkdown(r.Path) {
					return nil
				}
				r.Kind = KindUserData
				r.Collection = collection
				res.UserData[collection] = append(res.UserData[collection], r)
				return nil
			})
		}
		if err != nil {
			return nil, err
		}
	}

	for name := range res.UserData {
		res.Collections = append(res.Collections, name)
	}
	sort.Strings(res.Collections)

	return res, nil
}

func collectPosts(kind Kind, out *[]Resource) func(Resource) error {
	return func(r Resource) error {
		if !isMarkdown(r.Path) {
			return nil
		}
		if !postFilePattern.MatchString(r.Name()) {
			return &ConfigurationError{
				Path: r.Path,
				Msg:  "file name must look like YYYY-MM-DD-<name>",
			}
		}
		r.Kind = kind
		*out = append(*out, r)
		return nil
	}
}

// scanDir walks dir recursively and hands every regular file to visit, with
// Path and Rel already filled in. WalkDir visits entries in lexical order.
func scanDir(dir string, visit func(Resource) error) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &ConfigurationError{Path: p, Msg: "cannot read directory", Err: err}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return visit(Resource{Path: p, Rel: filepath.ToSlash(rel)})
	})
}

func isMarkdown(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsImage reports whether the path has one of the image extensions the
// generator resizes and optimizes.
func IsImage(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func isStylesheet(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".css", ".scss", ".sass":
		return true
	}
	return false
}
