package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mediahost/service/internal/storage"
)

// Store is the record store for one collection.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Insert(ctx context.Context, n NewItem) (*Item, error)
	Update(ctx context.Context, id string, p Patch) (*Item, error)
	ReplaceFile(ctx context.Context, id string, f FileRef) (*Item, error)
	UpdatePosition(ctx context.Context, id string, position int) error
	Delete(ctx context.Context, id string) error
}

// Publisher is notified after every successful write so viewers re-read the
// authoritative order.
type Publisher interface {
	Publish(c Collection)
}

// Upload is a validated-on-entry file handed over by the transport layer.
type Upload struct {
	Title       string
	FileName    string
	ContentType string
	Data        []byte
	UserID      string
}

// Service contains the business logic of one media collection.
type Service struct {
	kind   Kind
	store  Store
	blobs  storage.Storage
	events Publisher
	log    *zap.Logger
	now    func() time.Time
}

// NewService creates a Service for the collection described by kind.
func NewService(kind Kind, store Store, blobs storage.Storage, events Publisher, log *zap.Logger) *Service {
	return &Service{
		kind:   kind,
		store:  store,
		blobs:  blobs,
		events: events,
		log:    log.Named(string(kind.Collection)),
		now:    time.Now,
	}
}

// Kind returns the collection description.
func (s *Service) Kind() Kind { return s.kind }

// List returns the authoritative order as stored.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.List(ctx)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.store.Get(ctx, id)
}

// Create stores the blob and then inserts the record; the insert is the
// commit point. If the insert fails the fresh blob is removed best-effort.
func (s *Service) Create(ctx context.Context, u Upload) (*Item, error) {
	ref, err := s.storeBlob(ctx, u)
	if err != nil {
		return nil, err
	}

	it, err := s.store.Insert(ctx, NewItem{
		Title:       s.kind.DefaultTitle(u.Title, u.FileName),
		StoragePath: ref.StoragePath,
		PublicURL:   ref.PublicURL,
		FileName:    ref.FileName,
		FileSize:    ref.FileSize,
		PageCount:   ref.PageCount,
		UserID:      u.UserID,
	})
	if err != nil {
		s.discard(ctx, ref.StoragePath, "insert failed")
		return nil, err
	}

	s.log.Info("item created", zap.String("id", it.ID), zap.String("storage_path", it.StoragePath))
	s.publish()
	return it, nil
}

// Update edits title and, for describable collections, description.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Item, error) {
	if p.Description != nil && !s.kind.Describable {
		return nil, fmt.Errorf("%w: description", ErrUnsupported)
	}
	if p.Empty() {
		return s.store.Get(ctx, id)
	}

	it, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("item updated", zap.String("id", id))
	s.publish()
	return it, nil
}

// Replace swaps the blob behind an item. The superseded blob is removed only
// after the record points at the new one.
func (s *Service) Replace(ctx context.Context, id string, u Upload) (*Item, error) {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ref, err := s.storeBlob(ctx, u)
	if err != nil {
		return nil, err
	}

	it, err := s.store.ReplaceFile(ctx, id, ref)
	if err != nil {
		s.discard(ctx, ref.StoragePath, "record update failed")
		return nil, err
	}

	s.discard(ctx, old.StoragePath, "superseded")
	s.log.Info("item file replaced", zap.String("id", id), zap.String("storage_path", it.StoragePath))
	s.publish()
	return it, nil
}

// Delete removes the blob and then the record. A failed blob removal is
// logged and does not block the record deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	s.discard(ctx, it.StoragePath, "item deleted")

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("item deleted", zap.String("id", id))
	s.publish()
	return nil
}

// UpdatePosition writes one absolute position. It does not publish; callers
// flushing a batch publish once via Invalidate.
func (s *Service) UpdatePosition(ctx context.Context, id string, position int) error {
	if !s.kind.Ordered {
		return ErrUnsupported
	}
	return s.store.UpdatePosition(ctx, id, position)
}

// Invalidate tells viewers to re-read the collection.
func (s *Service) Invalidate() { s.publish() }

func (s *Service) storeBlob(ctx context.Context, u Upload) (FileRef, error) {
	size := int64(len(u.Data))
	if err := s.kind.Validate(u.ContentType, size); err != nil {
		return FileRef{}, err
	}

	ref := FileRef{FileName: u.FileName, FileSize: size}
	if s.kind.Collection == PDFs {
		if n, err := pageCount(u.Data); err != nil {
			s.log.Warn("could not read pdf page count", zap.String("file_name", u.FileName), zap.Error(err))
		} else {
			ref.PageCount = &n
		}
	}

	key := s.kind.StorageKey(u.FileName, u.ContentType, s.now())
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(u.Data), size, u.ContentType); err != nil {
		return FileRef{}, fmt.Errorf("upload blob: %w", err)
	}
	ref.StoragePath = key
	ref.PublicURL = s.blobs.PublicURL(key)
	return ref, nil
}

// discard removes a blob best-effort.
func (s *Service) discard(ctx context.Context, key, reason string) {
	if err := s.blobs.Remove(ctx, key); err != nil {
		s.log.Warn("blob cleanup failed",
			zap.String("storage_path", key),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

func (s *Service) publish() {
	if s.events != nil {
		s.events.Publish(s.kind.Collection)
	}
}
