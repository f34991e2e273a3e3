package media

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestDefaultTitle(t *testing.T) {
	tests := []struct {
		kind  Kind
		title string
		file  string
		want  string
	}{
		{GalleryKind(1), "", "photo.final.png", "photo.final"},
		{GalleryKind(1), "  Given  ", "photo.png", "Given"},
		{GalleryKind(1), "", "noext", "noext"},
		{PDFKind(1), "", "Report.PDF", "Report"},
		{PDFKind(1), "", "notes.txt", "notes.txt"},
		{PDFKind(1), "", "a.b.pdf", "a.b"},
	}
	for _, tt := range tests {
		if got := tt.kind.DefaultTitle(tt.title, tt.file); got != tt.want {
			t.Errorf("%s DefaultTitle(%q, %q) = %q, want %q", tt.kind.Collection, tt.title, tt.file, got, tt.want)
		}
	}
}

func TestStorageKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	pattern := regexp.MustCompile(`^1700000000123-[0-9a-f]{12}\.(png|pdf)$`)

	if key := GalleryKind(1).StorageKey("Photo.PNG", "image/png", now); !pattern.MatchString(key) {
		t.Errorf("unexpected gallery key %q", key)
	}
	if key := PDFKind(1).StorageKey("scan", "application/pdf", now); !pattern.MatchString(key) {
		t.Errorf("unexpected pdf key %q", key)
	}

	a := GalleryKind(1).StorageKey("a.png", "image/png", now)
	b := GalleryKind(1).StorageKey("a.png", "image/png", now)
	if a == b {
		t.Error("keys generated in the same millisecond collided")
	}
}

func TestValidate(t *testing.T) {
	g := GalleryKind(10)
	if err := g.Validate("image/webp", 10); err != nil {
		t.Errorf("expected image/webp at the limit to pass, got %v", err)
	}
	if err := g.Validate("image/png; charset=binary", 5); err != nil {
		t.Errorf("expected parameters to be ignored, got %v", err)
	}
	if err := g.Validate("image/png", 11); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if err := g.Validate("text/plain", 1); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
	if err := PDFKind(10).Validate("application/pdfx", 1); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected exact pdf match, got %v", err)
	}
}

func TestSizeLabel(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "0.5 KB"},
		{150 * 1024, "150.0 KB"},
		{2_400_000, "2.3 MB"},
		{10 * 1024 * 1024, "10.0 MB"},
		{3 << 30, "3072.0 MB"},
	}
	for _, tt := range tests {
		n := tt.bytes
		if got := sizeLabel(&n); got != tt.want {
			t.Errorf("sizeLabel(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
	if got := sizeLabel(nil); got != "" {
		t.Errorf("expected empty label, got %q", got)
	}
}
