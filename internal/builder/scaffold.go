package builder

import (
	"os"
	"path/filepath"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

const initConfig = `{
    "title": "My awesome site"
}
`

const initTemplate = `<!DOCTYPE html>
<html>
    <head>
        <title> {{ .site.config.title }} </title>
    </head>
    <body>
        {{ .page.content }}
    </body>
</html>
`

const initPage = `---
template: main
---
This site is built with Marigold!
`

// Scaffold creates a minimal project at dir: a config file, a main template
// and an index page. Without force an existing path is refused, so nothing is
// overwritten by accident.
func Scaffold(dir string, force bool) error {
	if _, err := os.Stat(dir); err == nil && !force {
		return &site.ConfigurationError{Path: dir, Msg: "already exists (use --force to scaffold anyway)"}
	}

	dirs := []string{
		filepath.Join(dir, site.DataDir),
		filepath.Join(dir, site.TemplatesDir),
		filepath.Join(dir, site.PagesDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &site.ConfigurationError{Path: d, Msg: "cannot create directory", Err: err}
		}
	}

	files := map[string]string{
		filepath.Join(dir, site.DataDir, site.ConfigFile):  initConfig,
		filepath.Join(dir, site.TemplatesDir, "main.html"): initTemplate,
		filepath.Join(dir, site.PagesDir, "index.md"):      initPage,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return &site.ConfigurationError{Path: path, Msg: "cannot write file", Err: err}
		}
	}

	mlog.Info("msg", "site initialized", "path", dir)
	return nil
}
