package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
)

// DefaultLanguage is used when a key is missing in the requested language
const DefaultLanguage = "en"

//go:embed locales/*.json
var embedded embed.FS

// Catalog holds translations for every language whose file loaded cleanly
type Catalog struct {
	mu       sync.RWMutex
	texts    map[string]map[string]string
	fallback string
}

// LocalesDir is the directory next to the config file whose <lang>.json
// files override the bundled ones
const LocalesDir = "locales"

// Default returns the catalog built from the bundled translation files
func Default(logger *slog.Logger) *Catalog {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		panic(err)
	}
	return Load(sub, logger)
}

// Load reads every <lang>.json at the root of fsys. Files that are missing
// or malformed leave that language out of the catalog.
func Load(fsys fs.FS, logger *slog.Logger) *Catalog {
	c := &Catalog{
		texts:    make(map[string]map[string]string),
		fallback: DefaultLanguage,
	}
	c.Overlay(fsys, logger)
	return c
}

// Overlay replaces languages with the files found in fsys. A malformed file
// removes its language; languages without a file are left as they are. A
// missing directory changes nothing.
func (c *Catalog) Overlay(fsys fs.FS, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		logger.Warn("cannot list translation files", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range files {
		lang := strings.TrimSuffix(path.Base(name), ".json")
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			logger.Warn("cannot read translation file", "lang", lang, "error", err)
			delete(c.texts, lang)
			continue
		}
		var texts map[string]string
		if err := json.Unmarshal(data, &texts); err != nil {
			logger.Warn("malformed translation file", "lang", lang, "error", err)
			delete(c.texts, lang)
			continue
		}
		c.texts[lang] = texts
	}
}

// Translate returns the text for key in lang. Missing keys fall back to the
// default language and then to the key itself. Args are applied with
// fmt.Sprintf when given.
func (c *Catalog) Translate(lang, key string, args ...any) string {
	text := c.lookup(lang, key)
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (c *Catalog) lookup(lang, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if texts, ok := c.texts[lang]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	if texts, ok := c.texts[c.fallback]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	return key
}

// Has reports whether lang loaded
func (c *Catalog) Has(lang string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.texts[lang]
	return ok
}

// Languages returns the loaded language codes, sorted
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.texts))
	for lang := range c.texts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// DisplayName returns the language's own name for itself
func (c *Catalog) DisplayName(lang string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.texts[lang][KeyLanguageDisplayName]; ok {
		return name
	}
	return lang
}
