package union

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	w := counterWidget()

	if err := c.Register("counter", w); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := c.Register("search", counterWidget()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := c.Lookup("counter")
	if !ok || got != w {
		t.Errorf("expected registered binder, got %v", got)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("expected missing widget")
	}
	if diff := cmp.Diff([]string{"counter", "search"}, c.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_RegisterErrors(t *testing.T) {
	c := NewCatalog()
	_ = c.Register("counter", counterWidget())

	if err := c.Register("counter", counterWidget()); !errors.Is(err, ErrWidgetExists) {
		t.Errorf("expected ErrWidgetExists, got %v", err)
	}
	if err := c.Register("", counterWidget()); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor for empty name, got %v", err)
	}
	if err := c.Register("nil", nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor for nil binder, got %v", err)
	}
}
