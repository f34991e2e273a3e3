package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind describes how a collection is stored, ordered and validated.
type Kind struct {
	Collection Collection
	Table      string
	// AcceptPrefix matches any content type with this prefix ("image/").
	AcceptPrefix string
	// AcceptExact matches exactly one content type ("application/pdf").
	AcceptExact string
	MaxSize     int64
	// Ordered collections carry a manual position (sort_order).
	Ordered bool
	// Describable collections carry a free-text description.
	Describable bool
	// ForcedExt replaces the uploaded extension in storage keys.
	ForcedExt string
}

// GalleryKind accepts any image up to maxSize bytes.
func GalleryKind(maxSize int64) Kind {
	return Kind{
		Collection:   Gallery,
		Table:        "gallery_items",
		AcceptPrefix: "image/",
		MaxSize:      maxSize,
		Ordered:      true,
		Describable:  true,
	}
}

// PDFKind accepts application/pdf up to maxSize bytes.
func PDFKind(maxSize int64) Kind {
	return Kind{
		Collection:  PDFs,
		Table:       "hosted_pdfs",
		AcceptExact: "application/pdf",
		MaxSize:     maxSize,
		ForcedExt:   ".pdf",
	}
}

// Accepts reports whether contentType is allowed in the collection.
func (k Kind) Accepts(contentType string) bool {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if k.AcceptExact != "" {
		return ct == k.AcceptExact
	}
	return strings.HasPrefix(ct, k.AcceptPrefix)
}

// Validate checks type and size before any network call is made.
func (k Kind) Validate(contentType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if !k.Accepts(contentType) {
		return fmt.Errorf("%w: %q is not accepted in %s", ErrInvalidType, contentType, k.Collection)
	}
	if size > k.MaxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, k.MaxSize)
	}
	return nil
}

// DefaultTitle returns title when set, otherwise the file name without its
// extension. PDFs only strip a trailing ".pdf".
func (k Kind) DefaultTitle(title, fileName string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(fileName)
	if k.ForcedExt != "" {
		if strings.HasSuffix(strings.ToLower(base), k.ForcedExt) {
			return base[:len(base)-len(k.ForcedExt)]
		}
		return base
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// StorageKey builds a unique blob key of the form "<unix-millis>-<random><ext>".
func (k Kind) StorageKey(fileName, contentType string, now time.Time) string {
	ext := k.ForcedExt
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fileName))
	}
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), random, ext)
}
