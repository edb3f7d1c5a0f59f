package site

// Error taxonomy of a build pass. Every error is fatal to the pass and
// carries the offending source path, so users can go straight to the file.

// ConfigurationError reports a broken project layout or invalid site
// configuration values.
type ConfigurationError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigurationError) Error() string { return format(e.Path, e.Msg, e.Err) }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// FrontMatterError reports missing or malformed front matter in a content
// file.
type FrontMatterError struct {
	Path string
	Msg  string
	Err  error
}

func (e *FrontMatterError) Error() string { return format(e.Path, e.Msg, e.Err) }
func (e *FrontMatterError) Unwrap() error { return e.Err }

// DataError reports malformed JSON data files or colliding data handles.
type DataError struct {
	Path string
	Msg  string
	Err  error
}

func (e *DataError) Error() string { return format(e.Path, e.Msg, e.Err) }
func (e *DataError) Unwrap() error { return e.Err }

// BuildError reports a failure while rendering or writing the site: missing
// templates, template evaluation errors, stylesheet compile errors,
// filesystem write failures.
type BuildError struct {
	Path string
	Msg  string
	Err  error
}

func (e *BuildError) Error() string { return format(e.Path, e.Msg, e.Err) }
func (e *BuildError) Unwrap() error { return e.Err }

func format(path, msg string, err error) string {
	s := msg
	if path != "" {
		s = path + ": " + s
	}
	if err != nil {
		s += ": " + err.Error()
	}
	return s
}
