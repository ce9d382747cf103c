package licensekey

import (
	"regexp"
	"testing"
)

var keyPattern = regexp.MustCompile(`^EA-[A-Z2-9]{5}-[A-Z2-9]{5}-[A-Z2-9]{5}-[A-Z2-9]{5}$`)

func TestGenerate_Format(t *testing.T) {
	g := NewGenerator()
	key, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !keyPattern.MatchString(key) {
		t.Fatalf("key %q does not match expected format", key)
	}
}

func TestGenerate_Distinct(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		key, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = struct{}{}
	}
}
