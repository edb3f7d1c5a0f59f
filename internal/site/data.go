package site

import (
	"encoding/json"
	"os"
	"strings"
)

// loadData reads every data file into a handle -> value map. The handle is
// the file stem, so _data/authors.json is reachable as site.data.authors.
// Handles must be unique across subdirectories, and "config" is taken.
// Uniqueness is case-insensitive: on some filesystems Authors.json and
// authors.json are the same file, so two such handles are never allowed to
// shadow each other silently.
func loadData(resources []Resource) (map[string]any, error) {
	data := map[string]any{}
	sources := map[string]string{}

	for _, res := range resources {
		handle := res.Name()
		key := strings.ToLower(handle)
		if key == "config" {
			return nil, &DataError{
				Path: res.Path,
				Msg:  "data handle 'config' is reserved for the site configuration",
			}
		}
		if prev, ok := sources[key]; ok {
			return nil, &DataError{
				Path: res.Path,
				Msg:  "data handle '" + handle + "' is already taken by " + prev,
			}
		}

		raw, err := os.ReadFile(res.Path)
		if err != nil {
			return nil, &DataError{Path: res.Path, Msg: "cannot read data file", Err: err}
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, &DataError{Path: res.Path, Msg: "invalid JSON", Err: err}
		}

		data[handle] = value
		sources[key] = res.Path
	}

	return data, nil
}
