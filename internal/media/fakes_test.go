package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store ordered like the database tables.
type memStore struct {
	mu        sync.Mutex
	kind      Kind
	items     map[string]*Item
	seq       int
	insertErr error
}

func newMemStore(kind Kind) *memStore {
	return &memStore{kind: kind, items: map[string]*Item{}}
}

func (m *memStore) List(context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if m.kind.Ordered && *out[i].Position != *out[j].Position {
			return *out[i].Position < *out[j].Position
		}
		if m.kind.Ordered {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memStore) Insert(_ context.Context, n NewItem) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.seq++
	size := n.FileSize
	it := &Item{
		ID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq),
		Title:       n.Title,
		StoragePath: n.StoragePath,
		PublicURL:   n.PublicURL,
		FileName:    n.FileName,
		FileSize:    &size,
		PageCount:   n.PageCount,
		CreatedAt:   time.Unix(int64(m.seq), 0),
	}
	if n.UserID != "" {
		uid := n.UserID
		it.UserID = &uid
	}
	if m.kind.Ordered {
		top := 1
		for _, other := range m.items {
			if *other.Position < top {
				top = *other.Position
			}
		}
		pos := top - 1
		it.Position = &pos
	}
	it.FileSizeLabel = sizeLabel(it.FileSize)
	m.items[it.ID] = it
	cp := *it
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id string, p Patch) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		it.Description = &d
	}
	cp := *it
	return &cp, nil
}

func (m *memStore) ReplaceFile(_ context.Context, id string, f FileRef) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	size := f.FileSize
	it.StoragePath, it.PublicURL, it.FileName, it.FileSize = f.StoragePath, f.PublicURL, f.FileName, &size
	cp := *it
	return &cp, nil
}

func (m *memStore) UpdatePosition(_ context.Context, id string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Position = &position
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// memBlobs is an in-memory storage.Storage.
type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   int
	uploadErr error
	removeErr error
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

func (b *memBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads++
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Remove(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, k := range keys {
		delete(b.objects, k)
	}
	return nil
}

func (b *memBlobs) PublicURL(key string) string { return "https://cdn.test/bucket/" + key }

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// recorder counts invalidations per collection.
type recorder struct {
	mu     sync.Mutex
	counts map[Collection]int
}

func (r *recorder) Publish(c Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[Collection]int{}
	}
	r.counts[c]++
}

func (r *recorder) count(c Collection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[c]
}

var errBoom = errors.New("boom")
