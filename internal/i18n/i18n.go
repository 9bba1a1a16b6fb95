// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// builtinLocales ship with the service under locales/.
var builtinLocales = []string{"en", "zh_TW"}

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

func Initialize(localesPath, defaultLang string) error {
	var err error
	once.Do(func() {
		instance = &I18n{
			translations: make(map[string]map[string]string),
			defaultLang:  defaultLang,
		}
		err = instance.LoadTranslations(localesPath)
	})
	return err
}

// LoadTranslations reads every <lang>.json under localesPath. The built-in
// locales must be present.
func (i *I18n) LoadTranslations(localesPath string) error {
	files, err := filepath.Glob(filepath.Join(localesPath, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list locale files: %w", err)
	}

	loaded := make(map[string]map[string]string, len(files))
	for _, filePath := range files {
		lang := strings.TrimSuffix(filepath.Base(filePath), ".json")

		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", filePath, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", filePath, err)
		}
		loaded[lang] = translations
	}

	for _, lang := range builtinLocales {
		if _, ok := loaded[lang]; !ok {
			return fmt.Errorf("locale %s missing from %s", lang, localesPath)
		}
	}

	i.mu.Lock()
	for lang, translations := range loaded {
		i.translations[lang] = translations
	}
	i.mu.Unlock()
	return nil
}

// T formats key in lang, then in the default language, then returns the key.
func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	text, ok := i.translations[lang][key]
	if !ok {
		text, ok = i.translations[i.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (i *I18n) supports(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.translations[lang]
	return ok
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

// Supports reports whether lang has a loaded locale. Before Initialize only
// the built-in locales count.
func Supports(lang string) bool {
	if instance != nil {
		return instance.supports(lang)
	}
	for _, l := range builtinLocales {
		if l == lang {
			return true
		}
	}
	return false
}

func GetSupportedLanguages() []string {
	if instance == nil {
		return append([]string(nil), builtinLocales...)
	}

	instance.mu.RLock()
	defer instance.mu.RUnlock()

	langs := make([]string, 0, len(instance.translations))
	for lang := range instance.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
