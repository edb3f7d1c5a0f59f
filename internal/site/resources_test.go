package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func mustLayout(t *testing.T, root string) Layout {
	t.Helper()
	layout, err := NewLayout(root)
	require.NoError(t, err)
	return layout
}

func TestNewLayout_MissingDirectory_ReturnsConfigurationError(t *testing.T) {
	_, err := NewLayout(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestScan_ClassifiesFilesByDirectory(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_templates/main.html", "")
	writeProjectFile(t, root, "_pages/index.md", "")
	writeProjectFile(t, root, "_posts/2021-04-07-hello.md", "")
	writeProjectFile(t, root, "_drafts/2021-05-01-wip.md", "")
	writeProjectFile(t, root, "_data/config.json", "{}")
	writeProjectFile(t, root, "_data/authors.json", "{}")
	writeProjectFile(t, root, "_assets/notes.txt", "")
	writeProjectFile(t, root, "_assets/photo.jpg", "")
	writeProjectFile(t, root, "_css/style.css", "")
	writeProjectFile(t, root, "_js/app.js", "")
	writeProjectFile(t, root, "_recipes/pie.md", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)

	require.Len(t, res.Templates, 1)
	require.Len(t, res.Pages, 1)
	require.Len(t, res.Posts, 1)
	require.Len(t, res.Drafts, 1)
	require.Len(t, res.Data, 1)
	require.NotNil(t, res.Config)
	require.Len(t, res.Assets, 1)
	require.Len(t, res.Images, 1)
	require.Len(t, res.Stylesheets, 1)
	require.Len(t, res.Scripts, 1)
	require.Equal(t, []string{"recipes"}, res.Collections)
	require.Len(t, res.UserData["recipes"], 1)
}

func TestScan_RecursesIntoSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_pages/docs/setup.md", "")
	writeProjectFile(t, root, "_pages/docs/advanced/tips.md", "")
	writeProjectFile(t, root, "_css/vendor/reset.css", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)

	require.Len(t, res.Pages, 2)
	require.Equal(t, "docs/advanced/tips.md", res.Pages[0].Rel)
	require.Equal(t, "docs/setup.md", res.Pages[1].Rel)
	require.Len(t, res.Stylesheets, 1)
	require.Equal(t, "vendor/reset.css", res.Stylesheets[0].Rel)
}

func TestScan_IgnoresBuildAndStagingTrees(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_pages/index.md", "")
	writeProjectFile(t, root, "_site/index.html", "")
	writeProjectFile(t, root, "_site.stage/index.html", "")
	writeProjectFile(t, root, "_site.old/index.html", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	require.Empty(t, res.Collections)
}

func TestScan_UnderscorePrefixedDir_BecomesCollection(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_recipes/pie.md", "")
	writeProjectFile(t, root, "_recipes/notes.txt", "ignored")
	writeProjectFile(t, root, "_authors/ana.md", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)
	require.Equal(t, []string{"authors", "recipes"}, res.Collections)
	require.Len(t, res.UserData["recipes"], 1)
	require.Equal(t, "recipes", res.UserData["recipes"][0].Collection)
}

func TestScan_NonUnderscoreDirs_Ignored(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "notes/todo.md", "")
	writeProjectFile(t, root, "README.md", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)
	require.Empty(t, res.Pages)
	require.Empty(t, res.Collections)
}

func TestScan_NonJSONInDataDir_ReturnsError(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_data/values.yaml", "a: 1")

	_, err := Scan(mustLayout(t, root))
	require.Error(t, err)
	require.Contains(t, err.Error(), "only JSON files are allowed")
}

func TestScan_PostWithoutDatePrefix_ReturnsError(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_posts/hello.md", "")

	_, err := Scan(mustLayout(t, root))
	require.Error(t, err)
	require.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestScan_NonMarkdownInPages_Ignored(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_pages/index.md", "")
	writeProjectFile(t, root, "_pages/sketch.txt", "")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
}

func TestResourcesPaths_ListsDraftsOnlyWhenAsked(t *testing.T) {
	root := t.TempDir()
	page := writeProjectFile(t, root, "_pages/index.md", "")
	draft := writeProjectFile(t, root, "_drafts/2021-05-01-wip.md", "")
	cfg := writeProjectFile(t, root, "_data/config.json", "{}")

	res, err := Scan(mustLayout(t, root))
	require.NoError(t, err)

	withDrafts := res.Paths(true)
	require.Contains(t, withDrafts, page)
	require.Contains(t, withDrafts, draft)
	require.Contains(t, withDrafts, cfg)

	without := res.Paths(false)
	require.NotContains(t, without, draft)
	require.Contains(t, without, page)
}

func TestIsImage_MatchesSupportedExtensions(t *testing.T) {
	require.True(t, IsImage("a/photo.jpg"))
	require.True(t, IsImage("a/photo.JPEG"))
	require.True(t, IsImage("a/photo.png"))
	require.False(t, IsImage("a/photo.gif"))
	require.False(t, IsImage("a/doc.txt"))
}

func TestIsReserved_CoversOutputTrees(t *testing.T) {
	require.True(t, IsReserved("_site"))
	require.True(t, IsReserved("_site.stage"))
	require.True(t, IsReserved("_pages"))
	require.False(t, IsReserved("_recipes"))
}
