package ui

import (
	"sync"

	"github.com/ytget/ytdx/internal/i18n"
)

// Localization tracks the active interface language on top of the catalog
type Localization struct {
	catalog         *i18n.Catalog
	mu              sync.RWMutex
	currentLanguage string
}

// NewLocalization creates a localization manager. Unknown languages fall
// back to the catalog default.
func NewLocalization(catalog *i18n.Catalog, lang string) *Localization {
	l := &Localization{catalog: catalog, currentLanguage: i18n.DefaultLanguage}
	l.SetLanguage(lang)
	return l
}

// SetLanguage switches the language if the catalog has it
func (l *Localization) SetLanguage(lang string) bool {
	if !l.catalog.Has(lang) {
		return false
	}
	l.mu.Lock()
	l.currentLanguage = lang
	l.mu.Unlock()
	return true
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	return l.catalog.Translate(l.GetCurrentLanguage(), key)
}

// Format returns localized text with fmt verbs filled in
func (l *Localization) Format(key string, args ...any) string {
	return l.catalog.Translate(l.GetCurrentLanguage(), key, args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLanguage
}

// GetAvailableLanguages returns language codes in display order
func (l *Localization) GetAvailableLanguages() []string {
	return l.catalog.Languages()
}

// DisplayName returns the native name of a language
func (l *Localization) DisplayName(lang string) string {
	return l.catalog.DisplayName(lang)
}
