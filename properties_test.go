package nodestore

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestPropertiesAccessors(t *testing.T) {
	p := Properties{
		PageSizeProperty:            " 4096 ",
		DirectIOProperty:            "true",
		RedisTTLProperty:            "90s",
		IndexErasureFoldersProperty: "a, ,b,c ",
		DataFileProperty:            "   ",
	}
	if v, err := p.Int(PageSizeProperty, 0); err != nil || v != 4096 {
		t.Errorf("Int got %d, %v", v, err)
	}
	if v, err := p.Int(BufferSizeProperty, 7); err != nil || v != 7 {
		t.Errorf("Int default got %d, %v", v, err)
	}
	if v, err := p.Bool(DirectIOProperty, false); err != nil || !v {
		t.Errorf("Bool got %v, %v", v, err)
	}
	if v, err := p.Duration(RedisTTLProperty, 0); err != nil || v != 90*time.Second {
		t.Errorf("Duration got %v, %v", v, err)
	}
	if got := p.List(IndexErasureFoldersProperty); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("List got %v", got)
	}
	if p.Has(DataFileProperty) {
		t.Error("blank value should not count")
	}
	if p.String(DataFileProperty, "x") != "x" {
		t.Error("blank value should yield the default")
	}
}

func TestPropertiesErrors(t *testing.T) {
	p := Properties{
		PageSizeProperty: "lots",
		DirectIOProperty: "maybe",
		RedisTTLProperty: "forever",
	}
	if _, err := p.Int(PageSizeProperty, 0); CodeOf(err) != ConfigurationError {
		t.Errorf("Int: expected ConfigurationError, got %v", err)
	}
	if _, err := p.Bool(DirectIOProperty, false); CodeOf(err) != ConfigurationError {
		t.Errorf("Bool: expected ConfigurationError, got %v", err)
	}
	if _, err := p.Duration(RedisTTLProperty, 0); CodeOf(err) != ConfigurationError {
		t.Errorf("Duration: expected ConfigurationError, got %v", err)
	}
	_, err := p.Require(IndexFileProperty)
	if CodeOf(err) != ConfigurationError || !errors.Is(err, ErrMissingProperty) {
		t.Errorf("Require: expected missing property, got %v", err)
	}
}

func TestPropertiesFromEnv(t *testing.T) {
	if got := EnvName(PageSizeProperty); got != "NODESTORE_DISK_PAGE_SIZE" {
		t.Errorf("EnvName got %s", got)
	}
	env := map[string]string{
		"NODESTORE_STORAGE_TYPE":   "disk",
		"NODESTORE_DISK_PAGE_SIZE": "512",
		"UNRELATED":                "x",
	}
	p := PropertiesFromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if len(p) != 2 || p[StorageTypeProperty] != "disk" || p[PageSizeProperty] != "512" {
		t.Errorf("unexpected properties %v", p)
	}
}

func TestParseKind(t *testing.T) {
	for k, s := range kindNames {
		got, err := ParseKind(" " + s + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) got %v, %v", s, got, err)
		}
	}
	if k, err := ParseKind("BUFFERED-DISK"); err != nil || k != BufferedDiskKind {
		t.Errorf("case insensitive match failed, got %v, %v", k, err)
	}
	if _, err := ParseKind("tape"); CodeOf(err) != ConfigurationError {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("unexpected name %s", Kind(42))
	}
}
