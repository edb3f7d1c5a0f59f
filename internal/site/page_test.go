package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func pageResource(rel string) Resource {
	return Resource{Kind: KindPage, Path: "/proj/_pages/" + rel, Rel: rel}
}

func TestNewPage_DerivesURLFromRelativePath(t *testing.T) {
	p, err := newPage(pageResource("about.md"), map[string]any{"template": "main"}, "body")
	require.NoError(t, err)
	require.Equal(t, "/about.html", p.URL)
	require.Equal(t, "about", p.Name)
	require.Equal(t, "main", p.Template)
}

func TestNewPage_RootIndex_MapsToSiteRoot(t *testing.T) {
	p, err := newPage(pageResource("index.md"), map[string]any{"template": "main"}, "")
	require.NoError(t, err)
	require.Equal(t, "/", p.URL)
}

func TestNewPage_NestedPath_KeepsDirectories(t *testing.T) {
	p, err := newPage(pageResource("docs/setup.md"), map[string]any{"template": "main"}, "")
	require.NoError(t, err)
	require.Equal(t, "/docs/setup.html", p.URL)
}

func TestNewPage_NestedIndex_KeepsOwnName(t *testing.T) {
	p, err := newPage(pageResource("docs/index.md"), map[string]any{"template": "main"}, "")
	require.NoError(t, err)
	require.Equal(t, "/docs/index.html", p.URL)
}

func TestNewPage_MissingTemplate_ReturnsFrontMatterError(t *testing.T) {
	_, err := newPage(pageResource("about.md"), map[string]any{}, "")
	require.Error(t, err)

	var fmErr *FrontMatterError
	require.True(t, errors.As(err, &fmErr))
	require.Contains(t, fmErr.Msg, "template")
}

func TestNewPage_NonStringTemplate_ReportsActualType(t *testing.T) {
	_, err := newPage(pageResource("about.md"), map[string]any{"template": 42}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a string for key 'template', got int")
}

func TestNewPage_Permalink_OverridesDerivedURL(t *testing.T) {
	fm := map[string]any{"template": "main", "permalink": "/blog/categories"}

	p, err := newPage(pageResource("category_index.md"), fm, "")
	require.NoError(t, err)
	require.Equal(t, "/blog/categories", p.Permalink)
	require.Equal(t, "/blog/categories.html", p.URL)
}

func TestNewPage_PermalinkWithoutLeadingSlash_ReturnsError(t *testing.T) {
	fm := map[string]any{"template": "main", "permalink": "blog/categories"}

	_, err := newPage(pageResource("p.md"), fm, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must start with '/'")
}

func TestNewPage_RootPermalink_ReturnsError(t *testing.T) {
	fm := map[string]any{"template": "main", "permalink": "/"}

	_, err := newPage(pageResource("p.md"), fm, "")
	require.Error(t, err)
}

func TestNewUserPage_URLFromCollectionAndName(t *testing.T) {
	res := Resource{
		Kind:       KindUserData,
		Path:       "/proj/_recipes/pie.md",
		Rel:        "pie.md",
		Collection: "recipes",
	}

	p, err := newUserPage(res, map[string]any{"template": "recipe"}, "")
	require.NoError(t, err)
	require.Equal(t, "/recipes/pie.html", p.URL)
	require.Equal(t, "recipes", p.Collection)
}

func TestNewUserPage_Permalink_NotAllowed(t *testing.T) {
	res := Resource{
		Kind:       KindUserData,
		Path:       "/proj/_recipes/pie.md",
		Rel:        "pie.md",
		Collection: "recipes",
	}
	fm := map[string]any{"template": "recipe", "permalink": "/pie"}

	_, err := newUserPage(res, fm, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed for user data pages")
}

func TestPageVars_DerivedKeysWinOverFrontMatter(t *testing.T) {
	fm := map[string]any{
		"template": "main",
		"url":      "/forged.html",
		"name":     "forged",
		"author":   "ana",
	}

	p, err := newPage(pageResource("real.md"), fm, "raw body")
	require.NoError(t, err)

	vars := p.Vars("<p>rendered</p>")
	require.Equal(t, "/real.html", vars["url"])
	require.Equal(t, "real", vars["name"])
	require.Equal(t, "ana", vars["author"])
	require.Equal(t, "<p>rendered</p>", vars["content"])
	require.Equal(t, "/proj/_pages/real.md", vars["source_file"])
}
