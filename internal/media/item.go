// Package media manages the two hosted media collections, gallery images and
// hosted PDFs: blob upload, record persistence, replace, edit and delete.
package media

import (
	"time"

	"github.com/docker/go-units"
)

// Collection names a media table.
type Collection string

const (
	Gallery Collection = "gallery"
	PDFs    Collection = "pdfs"
)

// Item is a single stored media record. Description and Position are only
// populated for gallery images, PageCount only for PDFs.
type Item struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	StoragePath   string    `json:"storagePath"`
	PublicURL     string    `json:"publicUrl"`
	FileName      string    `json:"fileName"`
	FileSize      *int64    `json:"fileSize,omitempty"`
	FileSizeLabel string    `json:"fileSizeLabel,omitempty"`
	Position      *int      `json:"position,omitempty"`
	PageCount     *int      `json:"pageCount,omitempty"`
	UserID        *string   `json:"userId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ItemID returns the record id.
func ItemID(i Item) string { return i.ID }

// NewItem is the record written at the commit point of an upload.
type NewItem struct {
	Title       string
	StoragePath string
	PublicURL   string
	FileName    string
	FileSize    int64
	PageCount   *int
	UserID      string
}

// FileRef describes the blob a record points at after a replace.
type FileRef struct {
	StoragePath string
	PublicURL   string
	FileName    string
	FileSize    int64
	PageCount   *int
}

// Patch holds user-editable fields. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

// sizeLabel renders a byte count in binary KB or MB with one decimal,
// e.g. "2.3 MB" for 2,400,000 bytes.
func sizeLabel(n *int64) string {
	if n == nil || *n <= 0 {
		return ""
	}
	return units.CustomSize("%.1f %s", float64(*n)/units.KiB, units.KiB, []string{"KB", "MB"})
}
