// Package i18n resolves the installer's user-facing strings.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	goLocale "github.com/jeandeaual/go-locale"
	i18nLib "github.com/kaptinlin/go-i18n"
	"golang.org/x/text/language"
)

//go:generate go run ../../cmd/lang -in localise -out lang

//go:embed lang/*.json
var embedded embed.FS

const (
	defaultLocale = "en-GB"
	// testModeEnv makes T return the key and its arguments instead of a translation.
	testModeEnv = "FABRIC_INSTALLER_TEST"
)

// localeEnv is checked in POSIX order, the first usable value wins.
var localeEnv = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

type LocaleProvider interface {
	GetLocales() ([]string, error)
}

type systemLocales struct{}

func (systemLocales) GetLocales() ([]string, error) {
	return goLocale.GetLocales()
}

type TData map[string]interface{}

type Tvars struct {
	Count int
	Data  *TData
}

// source says where catalogs come from. Tests point it at fixtures.
type source struct {
	files   fs.FS
	dir     string
	locales LocaleProvider
}

var (
	active   = source{files: embedded, dir: "lang", locales: systemLocales{}}
	current  *catalog
	loadOnce sync.Once
)

type catalog struct {
	// go-i18n caches lookups without locking.
	mu        sync.Mutex
	bundle    *i18nLib.I18n
	localizer *i18nLib.Localizer
}

func ResetForTesting() {
	current = nil
	loadOnce = sync.Once{}
}

// T translates key for the user's locale. At most one Tvars is accepted.
func T(key string, args ...Tvars) string {
	if _, raw := os.LookupEnv(testModeEnv); raw {
		return rawKey(key, args...)
	}
	if len(args) > 1 {
		panic("Too many arguments")
	}
	return loaded().translate(key, args...)
}

func loaded() *catalog {
	loadOnce.Do(func() {
		c, err := load(active)
		if err != nil {
			panic(err)
		}
		current = c
	})
	return current
}

func load(src source) (*catalog, error) {
	entries, err := fs.ReadDir(src.files, src.dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalogs in %s: %w", src.dir, err)
	}

	locales := []string{defaultLocale}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		locale := strings.TrimSuffix(entry.Name(), ".json")
		if !strings.EqualFold(locale, defaultLocale) {
			locales = append(locales, locale)
		}
	}

	bundle := i18nLib.NewBundle(
		i18nLib.WithDefaultLocale(defaultLocale),
		i18nLib.WithLocales(locales...),
	)
	if err := bundle.LoadFS(src.files, path.Join(src.dir, "*.json")); err != nil {
		return nil, fmt.Errorf("loading catalogs in %s: %w", src.dir, err)
	}

	provider := src.locales
	if provider == nil {
		provider = systemLocales{}
	}
	return &catalog{
		bundle:    bundle,
		localizer: bundle.NewLocalizer(localeChain(userLocales(provider))...),
	}, nil
}

func (c *catalog) translate(key string, args ...Tvars) string {
	if len(args) == 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.localizer.Get(key)
	}

	vars := i18nLib.Vars{"count": args[0].Count}
	if args[0].Data != nil {
		for name, value := range *args[0].Data {
			vars[name] = value
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localizer.Get(key, vars)
}

func userLocales(provider LocaleProvider) []string {
	for _, name := range localeEnv {
		if locale := envLocale(os.Getenv(name)); locale != "" {
			return []string{locale}
		}
	}

	detected, err := provider.GetLocales()
	if err != nil {
		return []string{language.English.String()}
	}

	locales := make([]string, 0, len(detected))
	for _, locale := range detected {
		if locale != "" {
			locales = append(locales, locale)
		}
	}
	return locales
}

// envLocale strips the codeset and modifier ("de_DE.UTF-8@euro" is "de_DE").
// The C and POSIX locales carry no language.
func envLocale(value string) string {
	if cut := strings.IndexAny(value, ".@"); cut >= 0 {
		value = value[:cut]
	}
	if value == "C" || value == "POSIX" {
		return ""
	}
	return value
}

// localeChain turns raw locale names into BCP 47 tags, each followed by its base
// language, without duplicates.
func localeChain(raw []string) []string {
	chain := make([]string, 0, len(raw)*2)
	seen := map[string]bool{}
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			chain = append(chain, tag)
		}
	}

	for _, name := range raw {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		add(tag.String())
		if base, _ := tag.Base(); base.String() != "und" {
			add(base.String())
		}
	}
	return chain
}

func rawKey(key string, args ...Tvars) string {
	var sb strings.Builder
	sb.WriteString(key)
	for i, arg := range args {
		fmt.Fprintf(&sb, ", Arg %d: {Count: %d, Data: %v}", i+1, arg.Count, arg.Data)
	}
	return sb.String()
}
