package watcher

import (
	"path/filepath"
	"strings"

	"github.com/marigold-ssg/marigold/internal/site"
)

// Plan is the smallest set of rebuild steps that covers a batch of changes.
// Full overrides everything else. Templates carries the base names of the
// changed template files so the builder can resolve which pages use them.
type Plan struct {
	Full        bool
	Stylesheets bool
	Scripts     bool
	Assets      bool
	Images      bool
	Templates   []string
}

// Empty reports whether the plan asks for no work at all.
func (p Plan) Empty() bool {
	return !p.Full && !p.Stylesheets && !p.Scripts && !p.Assets &&
		!p.Images && len(p.Templates) == 0
}

// Classify folds a batch of changes into a rebuild plan. Stylesheet, script,
// asset and image changes map to their targeted refreshes and template edits
// are kept by name. Anything that feeds the site model itself, pages, posts
// and data included, falls back to a full rebuild.
func Classify(layout site.Layout, changes []Change) Plan {
	var plan Plan
	for _, c := range changes {
		switch {
		case under(layout.Stylesheets(), c.Path):
			plan.Stylesheets = true
		case under(layout.Scripts(), c.Path):
			plan.Scripts = true
		case under(layout.Assets(), c.Path):
			if site.IsImage(c.Path) {
				plan.Images = true
			} else {
				plan.Assets = true
			}
		case under(layout.Templates(), c.Path):
			plan.Templates = append(plan.Templates, templateName(c.Path))
		default:
			plan.Full = true
		}
	}
	if plan.Full {
		return Plan{Full: true}
	}
	return plan
}

func under(dir, path string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

func templateName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
