package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func dataResource(t *testing.T, name, content string) Resource {
	t.Helper()
	path := writeProjectFile(t, t.TempDir(), "_data/"+name, content)
	return Resource{Kind: KindData, Path: path, Rel: name}
}

func TestLoadData_HandleIsFileStem(t *testing.T) {
	data, err := loadData([]Resource{
		dataResource(t, "authors.json", `[{"name": "ana"}]`),
		dataResource(t, "nav.json", `{"home": "/"}`),
	})
	require.NoError(t, err)
	require.Len(t, data, 2)
	require.Contains(t, data, "authors")
	require.Contains(t, data, "nav")

	nav, ok := data["nav"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "/", nav["home"])
}

func TestLoadData_ConfigHandle_Reserved(t *testing.T) {
	_, err := loadData([]Resource{dataResource(t, "subdir/config.json", `{}`)})
	require.Error(t, err)

	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	require.Contains(t, err.Error(), "reserved")
}

func TestLoadData_DuplicateHandles_ReturnError(t *testing.T) {
	first := dataResource(t, "authors.json", `[]`)
	second := dataResource(t, "extra/authors.json", `[]`)

	_, err := loadData([]Resource{first, second})
	require.Error(t, err)

	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	require.Contains(t, err.Error(), "already taken")
	require.Contains(t, err.Error(), first.Path)
}

func TestLoadData_DuplicateHandlesDifferingInCase_ReturnError(t *testing.T) {
	_, err := loadData([]Resource{
		dataResource(t, "authors.json", `[]`),
		dataResource(t, "extra/Authors.json", `[]`),
	})
	require.Error(t, err)

	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	require.Contains(t, err.Error(), "already taken")
}

func TestLoadData_InvalidJSON_ReturnsDataError(t *testing.T) {
	_, err := loadData([]Resource{dataResource(t, "broken.json", `{"a": `)})
	require.Error(t, err)

	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
}

func TestLoadData_NoFiles_EmptyMap(t *testing.T) {
	data, err := loadData(nil)
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Empty(t, data)
}
