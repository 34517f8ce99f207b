package config

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Keys of a grammar section that are not grammar options.
const (
	keyEnable        = "enable"
	keyBraceStyle    = "bracestyle"
	keyOptions       = "options"
	keyKeywords      = "keywords"
	keyKeywordScript = "keyword_script"
	keyPatterns      = "patterns"
)

// GrammarConfig holds the settings of one grammar section:
//
//	[grammars.lua]
//	enable = true
//	bracestyle = "operator"
//	patterns = ["*.rockspec"]
//	keyword_script = "lua-keywords.lua"
//
//	[grammars.lua.options]
//	foldcompact = false
//
//	[grammars.lua.keywords]
//	2 = ["print", "require"]
type GrammarConfig struct {
	Name string

	// Enable is nil when the section leaves the driver's setting alone.
	Enable *bool

	BraceStyle string

	// Options are grammar options as the driver's Configure takes them.
	Options map[string]string

	// Keywords replaces keyword lists by category 1 to 9.
	Keywords map[int][]string

	// KeywordScript is a Lua script returning keyword lists. A relative
	// path is resolved against the settings file's directory.
	KeywordScript string

	// Patterns are extra file name globs for the grammar.
	Patterns []string
}

// Settings returns the values to pass to the driver's Configure.
func (g GrammarConfig) Settings() map[string]string {
	out := make(map[string]string, len(g.Options)+2)
	for k, v := range g.Options {
		out[k] = v
	}
	if g.Enable != nil {
		out[keyEnable] = strconv.FormatBool(*g.Enable)
	}
	if g.BraceStyle != "" {
		out[keyBraceStyle] = g.BraceStyle
	}
	return out
}

// Categories returns the keyword categories the section sets, in order.
func (g GrammarConfig) Categories() []int {
	out := make([]int, 0, len(g.Keywords))
	for n := range g.Keywords {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Grammar returns the section of the named grammar. A grammar without a
// section gets an empty GrammarConfig.
func (c *Config) Grammar(name string) (GrammarConfig, error) {
	g := GrammarConfig{Name: name, Options: map[string]string{}, Keywords: map[int][]string{}}
	base := "grammars." + name
	v, ok := c.Get(base)
	if !ok {
		return g, nil
	}
	section, ok := v.(map[string]any)
	if !ok {
		return g, typeMismatch(base, "map", v)
	}

	var err error
	for key, val := range section {
		path := base + "." + key
		switch key {
		case keyEnable:
			var b bool
			b, err = c.GetBool(path)
			g.Enable = &b
		case keyBraceStyle:
			g.BraceStyle, err = c.GetString(path)
		case keyKeywordScript:
			g.KeywordScript, err = c.GetString(path)
			if err == nil && g.KeywordScript != "" && !filepath.IsAbs(g.KeywordScript) && c.path != "" {
				g.KeywordScript = filepath.Join(filepath.Dir(c.path), g.KeywordScript)
			}
		case keyPatterns:
			g.Patterns, err = stringSlice(path, val)
		case keyOptions:
			err = grammarOptions(path, val, g.Options)
		case keyKeywords:
			err = keywordLists(path, val, g.Keywords)
		default:
			// Options may also sit directly in the section.
			g.Options[key], err = scalar(path, val)
		}
		if err != nil {
			return GrammarConfig{}, err
		}
	}
	return g, nil
}

func grammarOptions(path string, v any, out map[string]string) error {
	m, ok := v.(map[string]any)
	if !ok {
		return typeMismatch(path, "map", v)
	}
	for name, val := range m {
		s, err := scalar(path+"."+name, val)
		if err != nil {
			return err
		}
		out[name] = s
	}
	return nil
}

// keywordLists reads lists keyed by category. A list is an array of
// words or one string of words separated by spaces.
func keywordLists(path string, v any, out map[int][]string) error {
	m, ok := v.(map[string]any)
	if !ok {
		return typeMismatch(path, "map", v)
	}
	for key, val := range m {
		p := path + "." + key
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > 9 {
			return notAccepted(p, "a keyword category from 1 to 9", key)
		}
		var words []string
		if s, ok := val.(string); ok {
			words = strings.Fields(s)
		} else if words, err = stringSlice(p, val); err != nil {
			return err
		}
		out[n] = words
	}
	return nil
}
