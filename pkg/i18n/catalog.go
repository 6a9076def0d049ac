package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formgen-image/pkg/render"
)

//go:embed translations/*.yaml
var bundled embed.FS

var (
	// ErrMissingTranslation is returned when no catalog holds the key.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrInvalidCatalog wraps malformed catalog files.
	ErrInvalidCatalog = errors.New("i18n: invalid catalog")
)

// Catalog holds messages per locale and domain. It is safe for concurrent
// use; loads rebuild the locale matcher.
type Catalog struct {
	mu       sync.RWMutex
	fallback language.Tag
	messages map[string]map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

var _ render.Translator = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallback sets the locale used when a request matches no catalog.
// Invalid tags are ignored.
func WithFallback(locale string) Option {
	return func(c *Catalog) {
		if tag, err := language.Parse(locale); err == nil {
			c.fallback = tag
		}
	}
}

// New returns an empty catalog falling back to English.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		fallback: language.English,
		messages: make(map[string]map[string]map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.rebuild()
	return c
}

// Default returns a catalog seeded with the bundled translations.
func Default(opts ...Option) (*Catalog, error) {
	c := New(opts...)
	if err := c.LoadFS(bundled, "translations"); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFS loads every <domain>.<locale>.yaml (or .yml) file in dir.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		domain, locale, ok := splitCatalogName(strings.TrimSuffix(name, ext))
		if !ok {
			return fmt.Errorf("%w: %s: expected <domain>.<locale>%s", ErrInvalidCatalog, name, ext)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		if err := c.LoadYAML(domain, locale, data); err != nil {
			return fmt.Errorf("i18n: %s: %w", name, err)
		}
	}
	return nil
}

// LoadYAML merges one catalog document into domain for locale.
func (c *Catalog) LoadYAML(domain, locale string, data []byte) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalidCatalog, locale, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	flat := make(map[string]string)
	if len(doc.Content) > 0 {
		if err := flattenNode(doc.Content[0], "", flat); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, msg := range flat {
		c.addLocked(tag, domainOrDefault(domain), key, msg)
	}
	c.rebuild()
	return nil
}

// Add registers a single message.
func (c *Catalog) Add(locale, domain, key, msg string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalidCatalog, locale, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(tag, domainOrDefault(domain), key, msg)
	c.rebuild()
	return nil
}

// Translate returns the message for key in domain, reading the catalog that
// best matches locale and then the fallback catalog.
func (c *Catalog) Translate(locale, domain, key string) (string, error) {
	domain = domainOrDefault(domain)
	c.mu.RLock()
	defer c.mu.RUnlock()

	tag := c.matchLocked(locale).String()
	if msg, ok := c.messages[tag][domain][key]; ok {
		return msg, nil
	}
	if fallback := c.fallback.String(); tag != fallback {
		if msg, ok := c.messages[fallback][domain][key]; ok {
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s/%s", ErrMissingTranslation, locale, domain, key)
}

// Match reports the catalog locale a request locale resolves to.
func (c *Catalog) Match(locale string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchLocked(locale).String()
}

// Locales lists the loaded locales, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for tag := range c.messages {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// For binds the catalog to one locale. The result translates with
// (key, domain) arguments and echoes the key when no message exists.
func (c *Catalog) For(locale string) LocaleTranslator {
	return LocaleTranslator{catalog: c, locale: locale}
}

// LocaleTranslator is a Catalog bound to a locale.
type LocaleTranslator struct {
	catalog *Catalog
	locale  string
}

// Translate returns the message or key when missing.
func (t LocaleTranslator) Translate(key, domain string) string {
	if t.catalog == nil {
		return key
	}
	msg, err := t.catalog.Translate(t.locale, domain, key)
	if err != nil {
		return key
	}
	return msg
}

// Locale reports the bound locale.
func (t LocaleTranslator) Locale() string {
	return t.locale
}

func (c *Catalog) addLocked(tag language.Tag, domain, key, msg string) {
	domains, ok := c.messages[tag.String()]
	if !ok {
		domains = make(map[string]map[string]string)
		c.messages[tag.String()] = domains
	}
	keys, ok := domains[domain]
	if !ok {
		keys = make(map[string]string)
		domains[domain] = keys
	}
	keys[key] = msg
}

// rebuild refreshes the matcher; the fallback is always the first candidate
// so unmatched requests resolve to it.
func (c *Catalog) rebuild() {
	fallback := c.fallback.String()
	names := make([]string, 0, len(c.messages))
	for name := range c.messages {
		if name != fallback {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	tags := []language.Tag{c.fallback}
	for _, name := range names {
		tags = append(tags, language.Make(name))
	}
	c.tags = tags
	c.matcher = language.NewMatcher(tags)
}

func (c *Catalog) matchLocked(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return c.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		return c.fallback
	}
	_, index, confidence := c.matcher.Match(desired...)
	if confidence == language.No || index < 0 || index >= len(c.tags) {
		return c.fallback
	}
	return c.tags[index]
}

func flattenNode(node *yaml.Node, prefix string, out map[string]string) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flattenNode(node.Content[i+1], key, out); err != nil {
				return err
			}
		}
		return nil
	case yaml.ScalarNode:
		if prefix == "" {
			return fmt.Errorf("%w: top-level scalar", ErrInvalidCatalog)
		}
		out[prefix] = node.Value
		return nil
	case yaml.AliasNode:
		return flattenNode(node.Alias, prefix, out)
	default:
		return fmt.Errorf("%w: %q must be a message or a map", ErrInvalidCatalog, prefix)
	}
}

func splitCatalogName(base string) (domain, locale string, ok bool) {
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return "", "", false
	}
	return base[:idx], base[idx+1:], true
}

func domainOrDefault(domain string) string {
	if strings.TrimSpace(domain) == "" {
		return render.DefaultDomain
	}
	return domain
}
