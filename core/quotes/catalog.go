package quotes

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category identifies a curated quote set.
type Category string

const (
	// Study holds quotes for learning sessions.
	Study Category = "study"
	// Success holds quotes about achieving goals.
	Success Category = "success"
	// Gym holds workout quotes.
	Gym Category = "gym"
	// Confidence holds self-belief quotes.
	Confidence Category = "confidence"
)

var (
	// ErrUnknownCategory is returned when catalog data names a category outside the fixed set.
	ErrUnknownCategory = errors.New("quotes: unknown category")
	// ErrEmptyCategory is returned when a category has no quotes.
	ErrEmptyCategory = errors.New("quotes: empty category")
	// ErrDuplicateCategory is returned when two keys name the same category after case folding.
	ErrDuplicateCategory = errors.New("quotes: duplicate category")
	// ErrEmptyFallback is returned when the fallback list has no quotes.
	ErrEmptyFallback = errors.New("quotes: empty fallback list")
)

// menuOrder is the order keys are laid out in the category menu, two per row.
var menuOrder = []Category{Study, Gym, Success, Confidence}

var labels = map[Category]string{
	Study:      "📚 Study",
	Gym:        "💪 Gym",
	Success:    "🏆 Success",
	Confidence: "🔥 Confidence",
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Fallback   []string            `yaml:"fallback"`
	Categories map[string][]string `yaml:"categories"`
}

// Catalog is the immutable mapping from category to curated quotes
// together with the fallback list used when the remote provider fails.
type Catalog struct {
	sets     map[Category][]string
	fallback []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := LoadCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("quotes: embedded catalog invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalogFile reads catalog YAML from path. An empty path yields the default catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quotes: read catalog file: %w", err)
	}
	return LoadCatalog(data)
}

// LoadCatalog parses catalog YAML. Every known category must be present and non-empty.
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("quotes: parse catalog: %w", err)
	}

	fallback := cleanQuotes(raw.Fallback)
	if len(fallback) == 0 {
		return nil, ErrEmptyFallback
	}

	sets := make(map[Category][]string, len(menuOrder))
	for key, list := range raw.Categories {
		cat := Category(strings.ToLower(strings.TrimSpace(key)))
		if _, ok := labels[cat]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
		}
		if _, dup := sets[cat]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, key)
		}
		sets[cat] = cleanQuotes(list)
	}
	for _, cat := range menuOrder {
		if len(sets[cat]) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyCategory, cat)
		}
	}

	return &Catalog{sets: sets, fallback: fallback}, nil
}

func cleanQuotes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// IsCategory reports whether token names one of the catalog categories.
func (c *Catalog) IsCategory(token string) bool {
	_, ok := c.sets[Category(token)]
	return ok
}

// Keys returns the category keys in menu order.
func (c *Catalog) Keys() []Category {
	return append([]Category(nil), menuOrder...)
}

// Label returns the button label for a category.
func (c *Catalog) Label(cat Category) string {
	if l, ok := labels[cat]; ok {
		return l
	}
	return string(cat)
}

// Quotes returns a copy of the curated set for cat.
func (c *Catalog) Quotes(cat Category) []string {
	return append([]string(nil), c.sets[cat]...)
}

// Sample picks a uniformly random quote from cat. It reports false for unknown categories.
func (c *Catalog) Sample(cat Category) (string, bool) {
	set, ok := c.sets[cat]
	if !ok || len(set) == 0 {
		return "", false
	}
	return set[rand.Intn(len(set))], true
}

// Fallback returns a copy of the local fallback list.
func (c *Catalog) Fallback() []string {
	return append([]string(nil), c.fallback...)
}

// SampleFallback picks a uniformly random quote from the fallback list.
func (c *Catalog) SampleFallback() string {
	return c.fallback[rand.Intn(len(c.fallback))]
}
