package builder

import (
	"fmt"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

// entity is the render-facing view of a page, post or user data page.
type entity struct {
	source   string
	template string
	content  string
	url      string
	vars     func(content string) map[string]any
}

func pageEntity(p *site.Page) entity {
	return entity{source: p.SourcePath, template: p.Template, content: p.Content, url: p.URL, vars: p.Vars}
}

func postEntity(p *site.Post) entity {
	return entity{source: p.SourcePath, template: p.Template, content: p.Content, url: p.URL, vars: p.Vars}
}

func siteEntities(s *site.Site) []entity {
	entities := make([]entity, 0, s.Entities())
	for _, p := range s.Pages {
		entities = append(entities, pageEntity(p))
	}
	for _, p := range s.Posts {
		entities = append(entities, postEntity(p))
	}
	for _, name := range s.Resources.Collections {
		for _, p := range s.Collections[name] {
			entities = append(entities, pageEntity(p))
		}
	}
	return entities
}

// renderPages renders every entity into dst. A non-nil only set restricts the
// pass to the entities whose source path is in it.
func (b *Builder) renderPages(dst string, only map[string]struct{}) error {
	siteVars := b.site.Vars()

	for _, e := range siteEntities(b.site) {
		if only != nil {
			if _, ok := only[e.source]; !ok {
				continue
			}
		}
		if err := b.renderEntity(dst, siteVars, e); err != nil {
			return err
		}
	}
	return nil
}

// renderEntity runs the two render phases: the Markdown body is evaluated as
// a template against site+page first, converted to HTML, and the result is
// bound to page.content for the layout template.
func (b *Builder) renderEntity(dst string, siteVars map[string]any, e entity) error {
	mlog.Debug("builder", "pages", "msg", "rendering", "file", e.source)

	if !b.templates.Has(e.template) {
		return &site.BuildError{
			Path: e.source,
			Msg:  fmt.Sprintf("template %q not found in %s", e.template, b.layout.Templates()),
		}
	}

	body, err := b.templates.RenderSource(e.content, renderVars(siteVars, e.vars(e.content)))
	if err != nil {
		return &site.BuildError{Path: e.source, Msg: "template evaluation failed", Err: err}
	}

	fragment, err := b.markdown.Convert(body)
	if err != nil {
		return &site.BuildError{Path: e.source, Msg: "markdown rendering failed", Err: err}
	}

	out, err := b.templates.Render(e.template, renderVars(siteVars, e.vars(fragment)))
	if err != nil {
		return &site.BuildError{
			Path: b.templates.Path(e.template),
			Msg:  fmt.Sprintf("template evaluation failed (from %s)", e.source),
			Err:  err,
		}
	}

	html, err := b.filter.Bytes("text/html", []byte(out))
	if err != nil {
		return &site.BuildError{Path: e.source, Msg: "minification failed", Err: err}
	}

	return writeFile(dst, urlToPath(e.url), html)
}

func renderVars(siteVars, pageVars map[string]any) map[string]any {
	return map[string]any{
		"site": siteVars,
		"page": pageVars,
	}
}

// RebuildTemplates re-renders the entities affected by the changed template
// files, writing into the live output tree. Templates that nothing references
// make this a no-op.
func (b *Builder) RebuildTemplates(names []string) error {
	if err := b.load(); err != nil {
		return err
	}

	only := map[string]struct{}{}
	for _, name := range names {
		for _, src := range b.AffectedSources(name) {
			only[src] = struct{}{}
		}
	}
	if len(only) == 0 {
		return nil
	}
	return b.renderPages(b.layout.Build(), only)
}
