package book

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultSrcDir   = "src"
	defaultBuildDir = "book"
)

// BookConfig is the [book] table of book.toml.
type BookConfig struct {
	Title        string   `toml:"title" json:"title,omitempty"`
	Authors      []string `toml:"authors" json:"authors"`
	Description  string   `toml:"description" json:"description,omitempty"`
	Language     string   `toml:"language" json:"language,omitempty"`
	Src          string   `toml:"src" json:"src"`
	Multilingual bool     `toml:"multilingual" json:"multilingual"`
}

// BuildConfig is the [build] table of book.toml.
type BuildConfig struct {
	BuildDir                string `toml:"build-dir" json:"build-dir"`
	CreateMissing           bool   `toml:"create-missing" json:"create-missing"`
	UseDefaultPreprocessors bool   `toml:"use-default-preprocessors" json:"use-default-preprocessors"`
}

// Config is the parsed book.toml. The [book] and [build] tables are typed;
// every other table, such as [output.epub], is reachable through Get and
// Decode.
type Config struct {
	Book  BookConfig
	Build BuildConfig

	table map[string]any
}

// NewConfig returns a configuration holding mdBook's defaults.
func NewConfig() *Config {
	c := &Config{table: map[string]any{}}
	c.Build.CreateMissing = true
	c.Build.UseDefaultPreprocessors = true
	c.applyDefaults()
	return c
}

// ParseConfig parses the contents of a book.toml file.
func ParseConfig(data []byte) (*Config, error) {
	table := map[string]any{}
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, "book: parse book.toml")
	}

	var typed struct {
		Book  BookConfig  `toml:"book"`
		Build BuildConfig `toml:"build"`
	}
	typed.Build.CreateMissing = true
	typed.Build.UseDefaultPreprocessors = true
	if err := toml.Unmarshal(data, &typed); err != nil {
		return nil, errors.Wrap(err, "book: parse book.toml")
	}

	c := &Config{Book: typed.Book, Build: typed.Build, table: table}
	c.applyDefaults()
	return c, nil
}

// LoadConfig reads book.toml from path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, errors.Wrapf(err, "book: read %s", path)
	}
	return ParseConfig(data)
}

func (c *Config) applyDefaults() {
	if c.Book.Src == "" {
		c.Book.Src = defaultSrcDir
	}
	if c.Book.Authors == nil {
		c.Book.Authors = []string{}
	}
	if c.Build.BuildDir == "" {
		c.Build.BuildDir = defaultBuildDir
	}
	if c.table == nil {
		c.table = map[string]any{}
	}
}

// Get looks up a dotted key such as "output.epub.curly-quotes".
// Keys under "book" and "build" reflect the typed tables.
func (c *Config) Get(key string) (any, bool) {
	var cur any = c.snapshot()
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores value under a dotted key, creating intermediate tables.
func (c *Config) Set(key string, value any) error {
	parts := strings.Split(key, ".")
	if parts[0] == "book" || parts[0] == "build" {
		return c.setTyped(parts, value)
	}
	if c.table == nil {
		c.table = map[string]any{}
	}
	cur := c.table
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			if _, exists := cur[part]; exists {
				return errors.Errorf("book: config key %q is not a table", part)
			}
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// setTyped updates the typed [book] or [build] table by round-tripping it
// through its JSON form.
func (c *Config) setTyped(parts []string, value any) error {
	if len(parts) != 2 {
		return errors.Errorf("book: unsupported config key %q", strings.Join(parts, "."))
	}
	var target any = &c.Book
	if parts[0] == "build" {
		target = &c.Build
	}
	raw, err := json.Marshal(target)
	if err != nil {
		return errors.Wrap(err, "book: encode config")
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.Wrap(err, "book: decode config")
	}
	m[parts[1]] = value
	if raw, err = json.Marshal(m); err != nil {
		return errors.Wrap(err, "book: encode config")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.Wrapf(err, "book: set %s", strings.Join(parts, "."))
	}
	return nil
}

// Decode unmarshals the table found at key into v. It reports false when
// the key is absent.
func (c *Config) Decode(key string, v any) (bool, error) {
	val, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return true, errors.Wrapf(err, "book: encode %s", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, errors.Wrapf(err, "book: decode %s", key)
	}
	return true, nil
}

// BuildDirFor returns the directory a backend renders into. mdBook shares
// the build directory when only one output is configured and gives each
// backend its own sub-directory otherwise.
func (c *Config) BuildDirFor(root, backend string) string {
	dir := c.Build.BuildDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	if outputs, ok := c.table["output"].(map[string]any); ok && len(outputs) > 1 {
		return filepath.Join(dir, backend)
	}
	return dir
}

// snapshot returns the full table with the typed sections folded in.
func (c *Config) snapshot() map[string]any {
	out := maps.Clone(c.table)
	if out == nil {
		out = map[string]any{}
	}
	out["book"] = overlay(out["book"], c.Book)
	out["build"] = overlay(out["build"], c.Build)
	return out
}

// overlay copies the fields of typed over the generic table base, keeping
// keys the typed struct does not know about.
func overlay(base any, typed any) map[string]any {
	m := map[string]any{}
	if b, ok := base.(map[string]any); ok {
		maps.Copy(m, b)
	}
	raw, err := json.Marshal(typed)
	if err != nil {
		return m
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return m
	}
	maps.Copy(m, fields)
	return m
}

// MarshalJSON writes the whole configuration as mdBook serialises it
// inside a RenderContext.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.snapshot())
}

// UnmarshalJSON reads the configuration from a RenderContext.
func (c *Config) UnmarshalJSON(data []byte) error {
	table := map[string]any{}
	if err := json.Unmarshal(data, &table); err != nil {
		return errors.Wrap(err, "book: decode config")
	}
	var typed struct {
		Book  BookConfig  `json:"book"`
		Build BuildConfig `json:"build"`
	}
	typed.Build.CreateMissing = true
	typed.Build.UseDefaultPreprocessors = true
	if err := json.Unmarshal(data, &typed); err != nil {
		return errors.Wrap(err, "book: decode config")
	}
	*c = Config{Book: typed.Book, Build: typed.Build, table: table}
	c.applyDefaults()
	return nil
}
