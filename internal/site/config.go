package site

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// timezonePattern matches UTC offsets like "+0200" or "-0730".
var timezonePattern = regexp.MustCompile(`^[+-]\d{4}$`)

// DefaultTimezone is assumed for posts when neither the post nor the site
// configuration sets one.
const DefaultTimezone = "+0000"

// ImageVariant describes one generated output per source image. Size is a
// scale factor relative to the original dimensions.
type ImageVariant struct {
	Size     float64 `mapstructure:"size"`
	Suffix   string  `mapstructure:"suffix"`
	Optimize bool    `mapstructure:"optimize"`
}

// Config is the site configuration from _data/config.json. Recognized keys
// are validated and lifted into fields; the full mapping stays available to
// templates through the site context.
type Config struct {
	// Path is the config file location, or "" when defaults are in effect.
	Path string

	PygmentsStyle string
	Timezone      string
	Minify        bool
	Images        []ImageVariant

	raw map[string]any
}

// defaultImages produces the original image untouched.
var defaultImages = []ImageVariant{{Size: 1, Suffix: "", Optimize: false}}

func defaultConfig() *Config {
	return &Config{
		Timezone: DefaultTimezone,
		Images:   append([]ImageVariant(nil), defaultImages...),
		raw:      map[string]any{},
	}
}

// requiredVariantKeys must all be present on every 'images' entry.
var requiredVariantKeys = []string{"size", "suffix", "optimize"}

// loadConfig reads and validates a config.json. A nil resource yields the
// defaults.
func loadConfig(res *Resource) (*Config, error) {
	cfg := defaultConfig()
	if res == nil {
		return cfg, nil
	}
	cfg.Path = res.Path

	raw, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, &DataError{Path: res.Path, Msg: "cannot read config file", Err: err}
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &DataError{Path: res.Path, Msg: "invalid JSON", Err: err}
	}

	if v, ok := fields["pygments_style"]; ok {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, &ConfigurationError{Path: res.Path, Msg: "'pygments_style' must be a string", Err: err}
		}
		cfg.PygmentsStyle = s
	}

	if v, ok := fields["timezone"]; ok {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, &ConfigurationError{Path: res.Path, Msg: "'timezone' must be a string", Err: err}
		}
		if !timezonePattern.MatchString(s) {
			return nil, &ConfigurationError{
				Path: res.Path,
				Msg:  fmt.Sprintf("'timezone' must look like +0200 or -0730, got %q", s),
			}
		}
		cfg.Timezone = s
	}

	if v, ok := fields["minify"]; ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, &ConfigurationError{Path: res.Path, Msg: "'minify' must be a boolean", Err: err}
		}
		cfg.Minify = b
	}

	if v, ok := fields["images"]; ok {
		variants, err := parseImageVariants(res.Path, v)
		if err != nil {
			return nil, err
		}
		// An empty list means the same as no list: copy unmodified.
		if len(variants) > 0 {
			cfg.Images = variants
		}
	}

	// Templates see the configuration exactly as the user wrote it.
	cfg.raw = fields

	return cfg, nil
}

func parseImageVariants(path string, v any) ([]ImageVariant, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, &ConfigurationError{Path: path, Msg: "'images' must be a list"}
	}

	variants := make([]ImageVariant, 0, len(list))
	for i, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, &ConfigurationError{
				Path: path,
				Msg:  fmt.Sprintf("'images' entry %d must be an object", i),
			}
		}
		for _, key := range requiredVariantKeys {
			if _, ok := fields[key]; !ok {
				return nil, &ConfigurationError{
					Path: path,
					Msg:  fmt.Sprintf("'images' entry %d is missing the '%s' key", i, key),
				}
			}
		}

		var variant ImageVariant
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &variant,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(fields); err != nil {
			return nil, &ConfigurationError{
				Path: path,
				Msg:  fmt.Sprintf("invalid 'images' entry %d", i),
				Err:  err,
			}
		}
		if variant.Size <= 0 || variant.Size > 1 {
			return nil, &ConfigurationError{
				Path: path,
				Msg:  fmt.Sprintf("'images' entry %d: 'size' must be in (0, 1], got %v", i, variant.Size),
			}
		}
		variants = append(variants, variant)
	}

	return variants, nil
}

func (c *Config) contextMap() map[string]any {
	return c.raw
}
