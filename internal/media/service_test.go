package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fixture struct {
	svc    *Service
	store  *memStore
	blobs  *memBlobs
	events *recorder
}

func newFixture(kind Kind) *fixture {
	f := &fixture{store: newMemStore(kind), blobs: newMemBlobs(), events: &recorder{}}
	f.svc = NewService(kind, f.store, f.blobs, f.events, zap.NewNop())
	return f
}

func TestCreate_ValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		up   Upload
		want error
	}{
		{"gallery rejects pdf", GalleryKind(100), Upload{FileName: "a.pdf", ContentType: "application/pdf", Data: []byte("x")}, ErrInvalidType},
		{"gallery too large", GalleryKind(3), Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader}, ErrTooLarge},
		{"pdf rejects image", PDFKind(100), Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader}, ErrInvalidType},
		{"empty file", PDFKind(100), Upload{FileName: "a.pdf", ContentType: "application/pdf"}, ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.kind)
			_, err := f.svc.Create(context.Background(), tt.up)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.blobs.uploads != 0 || len(f.store.items) != 0 {
				t.Errorf("validation failure reached storage: uploads=%d records=%d", f.blobs.uploads, len(f.store.items))
			}
			if f.events.count(tt.kind.Collection) != 0 {
				t.Error("failed create should not invalidate")
			}
		})
	}
}

func TestCreate_GalleryDefaultsAndTopPlacement(t *testing.T) {
	f := newFixture(GalleryKind(1 << 20))
	ctx := context.Background()

	first, err := f.svc.Create(ctx, Upload{FileName: "photo.final.png", ContentType: "image/png", Data: pngHeader, UserID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Title != "photo.final" {
		t.Errorf("expected title from file stem, got %q", first.Title)
	}
	if !strings.HasSuffix(first.StoragePath, ".png") || first.PublicURL != f.blobs.PublicURL(first.StoragePath) {
		t.Errorf("unexpected blob reference %q %q", first.StoragePath, first.PublicURL)
	}
	if first.UserID == nil || *first.UserID != "u-1" {
		t.Error("expected creator stamp")
	}

	second, err := f.svc.Create(ctx, Upload{Title: "Second", FileName: "b.png", ContentType: "image/png", Data: pngHeader})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, _ := f.svc.List(ctx)
	if len(items) != 2 || items[0].ID != second.ID {
		t.Errorf("expected newest upload first, got %v", ids(items))
	}
	if f.events.count(Gallery) != 2 {
		t.Errorf("expected 2 invalidations, got %d", f.events.count(Gallery))
	}
}

func TestCreate_UploadFailureCreatesNoRecord(t *testing.T) {
	f := newFixture(GalleryKind(1 << 20))
	f.blobs.uploadErr = errBoom

	if _, err := f.svc.Create(context.Background(), Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader}); !errors.Is(err, errBoom) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if len(f.store.items) != 0 {
		t.Error("record created despite failed upload")
	}
}

func TestCreate_InsertFailureRemovesBlob(t *testing.T) {
	f := newFixture(PDFKind(1 << 20))
	f.store.insertErr = errBoom

	if _, err := f.svc.Create(context.Background(), Upload{FileName: "doc.PDF", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}); !errors.Is(err, errBoom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if f.blobs.count() != 0 {
		t.Error("orphan blob left behind")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	desc := "by the sea"

	g := newFixture(GalleryKind(1 << 20))
	it, _ := g.svc.Create(ctx, Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader})
	got, err := g.svc.Update(ctx, it.ID, Patch{Description: &desc})
	if err != nil || got.Description == nil || *got.Description != desc {
		t.Fatalf("gallery description edit failed: %v", err)
	}
	if _, err := g.svc.Update(ctx, "missing", Patch{Description: &desc}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	p := newFixture(PDFKind(1 << 20))
	doc, _ := p.svc.Create(ctx, Upload{FileName: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")})
	if _, err := p.svc.Update(ctx, doc.ID, Patch{Description: &desc}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for pdf description, got %v", err)
	}
}

func TestReplace_RemovesSupersededBlob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(GalleryKind(1 << 20))
	it, _ := f.svc.Create(ctx, Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader})

	got, err := f.svc.Replace(ctx, it.ID, Upload{FileName: "b.jpg", ContentType: "image/jpeg", Data: []byte("\xff\xd8\xff")})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.FileName != "b.jpg" || got.StoragePath == it.StoragePath {
		t.Errorf("record not repointed: %+v", got)
	}
	if f.blobs.has(it.StoragePath) || !f.blobs.has(got.StoragePath) {
		t.Error("expected old blob removed and new blob kept")
	}
}

func TestDelete_StorageFailureStillDeletesRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(GalleryKind(1 << 20))
	it, _ := f.svc.Create(ctx, Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader})
	f.blobs.removeErr = errBoom

	if err := f.svc.Delete(ctx, it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, it.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected record gone, got %v", err)
	}
	if err := f.svc.Delete(ctx, it.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdatePosition_OnlyOrdered(t *testing.T) {
	f := newFixture(PDFKind(1 << 20))
	if err := f.svc.UpdatePosition(context.Background(), "x", 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
