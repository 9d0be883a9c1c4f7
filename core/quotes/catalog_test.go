package quotes

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultCatalogSampleStaysInCategory(t *testing.T) {
	cat := DefaultCatalog()
	for _, key := range cat.Keys() {
		set := cat.Quotes(key)
		if len(set) != 10 {
			t.Fatalf("%s: expected 10 quotes, got %d", key, len(set))
		}
		for i := 0; i < 50; i++ {
			q, ok := cat.Sample(key)
			if !ok {
				t.Fatalf("%s: sample reported unknown category", key)
			}
			if q == "" {
				t.Fatalf("%s: empty sample", key)
			}
			if !slices.Contains(set, q) {
				t.Fatalf("%s: sample %q not in category set", key, q)
			}
		}
	}
}

func TestCatalogKeysMenuOrder(t *testing.T) {
	got := DefaultCatalog().Keys()
	want := []Category{Study, Gym, Success, Confidence}
	if !slices.Equal(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	got[0] = "mutated"
	if DefaultCatalog().Keys()[0] != Study {
		t.Fatal("Keys must return a copy")
	}
}

func TestCatalogIsCategory(t *testing.T) {
	cat := DefaultCatalog()
	cases := map[string]bool{
		"study":      true,
		"success":    true,
		"gym":        true,
		"confidence": true,
		"random":     false,
		"exit":       false,
		"":           false,
		"Study":      false,
	}
	for token, want := range cases {
		if got := cat.IsCategory(token); got != want {
			t.Errorf("IsCategory(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestCatalogSampleUnknown(t *testing.T) {
	if q, ok := DefaultCatalog().Sample("poetry"); ok || q != "" {
		t.Fatalf("expected miss for unknown category, got %q %v", q, ok)
	}
}

func TestCatalogSampleFallback(t *testing.T) {
	cat := DefaultCatalog()
	list := cat.Fallback()
	if len(list) != 10 {
		t.Fatalf("expected 10 fallback quotes, got %d", len(list))
	}
	for i := 0; i < 50; i++ {
		if q := cat.SampleFallback(); !slices.Contains(list, q) {
			t.Fatalf("fallback sample %q not in list", q)
		}
	}
}

func TestLoadCatalogValidation(t *testing.T) {
	full := `
fallback: ["f1"]
categories:
  study: ["s1"]
  success: ["s2"]
  gym: ["g1"]
  confidence: ["c1"]
`
	if _, err := LoadCatalog([]byte(full)); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown category",
			yaml: full + "  poetry: [\"p1\"]\n",
			want: ErrUnknownCategory,
		},
		{
			name: "missing category",
			yaml: "fallback: [\"f1\"]\ncategories:\n  study: [\"s1\"]\n",
			want: ErrEmptyCategory,
		},
		{
			name: "blank quotes only",
			yaml: "fallback: [\"f1\"]\ncategories:\n  study: [\" \"]\n  success: [\"a\"]\n  gym: [\"b\"]\n  confidence: [\"c\"]\n",
			want: ErrEmptyCategory,
		},
		{
			name: "case-folded duplicate",
			yaml: full + "  Study: [\"S\"]\n",
			want: ErrDuplicateCategory,
		},
		{
			name: "empty fallback",
			yaml: "fallback: []\ncategories:\n  study: [\"a\"]\n",
			want: ErrEmptyFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := LoadCatalog([]byte("fallback: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	if c, err := LoadCatalogFile(""); err != nil || c != DefaultCatalog() {
		t.Fatalf("empty path should yield default catalog, got %v %v", c, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := "fallback: [\"only\"]\ncategories:\n  study: [\"s\"]\n  success: [\"u\"]\n  gym: [\"g\"]\n  confidence: [\"c\"]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if q, _ := c.Sample(Gym); q != "g" {
		t.Fatalf("gym sample = %q", q)
	}
	if c.SampleFallback() != "only" {
		t.Fatal("unexpected fallback")
	}

	if _, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
