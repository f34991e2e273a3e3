// Package gallery composes the public gallery views (masonry layout and
// lightbox) and the admin reorder sessions on top of the gallery collection.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mediahost/service/internal/layout"
	"github.com/mediahost/service/internal/media"
	"github.com/mediahost/service/internal/reorder"
)

// ErrOrderMismatch is returned when a submitted order does not name exactly
// the current gallery items.
var ErrOrderMismatch = errors.New("order must list every gallery item exactly once")

// Collection is the part of media.Service the gallery needs.
type Collection interface {
	List(ctx context.Context) ([]media.Item, error)
	UpdatePosition(ctx context.Context, id string, position int) error
	Invalidate()
}

// Layout is the masonry arrangement of the public gallery at one width.
type Layout struct {
	Width       int            `json:"width"`
	ColumnCount int            `json:"columnCount"`
	Columns     [][]media.Item `json:"columns"`
}

// LightboxView is the state of the lightbox opened on one item.
type LightboxView struct {
	Item    media.Item   `json:"item"`
	Index   int          `json:"index"`
	Total   int          `json:"total"`
	HasPrev bool         `json:"hasPrev"`
	HasNext bool         `json:"hasNext"`
	Counter string       `json:"counter"`
	Cell    *layout.Cell `json:"cell,omitempty"`
}

// Session is a snapshot of one admin's reorder session.
type Session struct {
	State string        `json:"state"`
	Items []media.Item  `json:"items"`
	Steps []StepControl `json:"steps"`
	Drag  reorder.Drag  `json:"drag"`
}

// StepControl tells whether the up/down buttons of an item are enabled.
type StepControl struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

// Service serves gallery views and coordinates reorder sessions, one per
// admin user.
type Service struct {
	items       Collection
	breakpoints layout.Breakpoints
	limit       int
	log         *zap.Logger

	mu       sync.Mutex
	sessions map[string]*reorder.Coordinator[media.Item]
}

// NewService creates a gallery Service. limit bounds concurrent position
// updates during a save.
func NewService(items Collection, bp layout.Breakpoints, limit int, log *zap.Logger) *Service {
	return &Service{
		items:       items,
		breakpoints: bp,
		limit:       limit,
		log:         log.Named("gallery"),
		sessions:    make(map[string]*reorder.Coordinator[media.Item]),
	}
}

// Items returns the authoritative order.
func (s *Service) Items(ctx context.Context) ([]media.Item, error) {
	return s.items.List(ctx)
}

// Layout partitions the authoritative order into masonry columns for width.
func (s *Service) Layout(ctx context.Context, width int) (*Layout, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	engine := layout.NewEngine(s.breakpoints, width, len(items))
	columns := engine.Columns()
	out := &Layout{
		Width:       width,
		ColumnCount: engine.ColumnCount(),
		Columns:     make([][]media.Item, len(columns)),
	}
	for c, indices := range columns {
		out.Columns[c] = make([]media.Item, len(indices))
		for r, i := range indices {
			out.Columns[c][r] = items[i]
		}
	}
	return out, nil
}

// Lightbox opens the lightbox on the item at logical index. When width is
// positive the masonry cell of the item at that width is included.
func (s *Service) Lightbox(ctx context.Context, index, width int) (*LightboxView, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	lb := layout.NewLightbox(len(items))
	if err := lb.Open(index); err != nil {
		return nil, err
	}

	view := &LightboxView{
		Item:    items[lb.Index()],
		Index:   lb.Index(),
		Total:   len(items),
		HasPrev: lb.HasPrev(),
		HasNext: lb.HasNext(),
		Counter: lb.Counter(),
	}
	if width > 0 {
		cell := layout.Locate(lb.Index(), s.breakpoints.Columns(width))
		view.Cell = &cell
	}
	return view, nil
}

func (s *Service) coordinator(userID string) *reorder.Coordinator[media.Item] {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[userID]
	if !ok {
		c = reorder.NewCoordinator(media.ItemID, s.limit)
		s.sessions[userID] = c
	}
	return c
}

// Enter starts a reorder session over a fresh read of the authoritative order.
func (s *Service) Enter(ctx context.Context, userID string) (*Session, error) {
	c := s.coordinator(userID)
	switch c.State() {
	case reorder.Reordering:
		return nil, reorder.ErrAlreadyReordering
	case reorder.Saving:
		return nil, reorder.ErrBusy
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Enter(items); err != nil {
		return nil, err
	}
	s.log.Debug("reorder session started", zap.String("user_id", userID), zap.Int("items", len(items)))
	return snapshot(c), nil
}

// Session returns the current session of userID.
func (s *Service) Session(userID string) *Session {
	return snapshot(s.coordinator(userID))
}

// Move commits a single move from source to target.
func (s *Service) Move(userID string, source, target int) (*Session, error) {
	c := s.coordinator(userID)
	if err := c.Commit(source, target); err != nil {
		return nil, err
	}
	return snapshot(c), nil
}

// Step moves the item at index one slot up or down.
func (s *Service) Step(userID string, index int, dir reorder.Direction) (*Session, error) {
	c := s.coordinator(userID)
	if err := c.StepItem(index, dir); err != nil {
		return nil, err
	}
	return snapshot(c), nil
}

// DragEvent is one pointer event of a drag gesture.
type DragEvent string

const (
	DragStart DragEvent = "start"
	DragOver  DragEvent = "over"
	DragEnd   DragEvent = "end"
	DragAbort DragEvent = "abort"
)

// Drag feeds one drag event into the session. Only DragEnd changes the order.
func (s *Service) Drag(userID string, event DragEvent, index int) (*Session, error) {
	c := s.coordinator(userID)
	var err error
	switch event {
	case DragStart:
		err = c.DragStart(index)
	case DragOver:
		err = c.DragOver(index)
	case DragEnd:
		_, err = c.DragEnd()
	case DragAbort:
		c.DragAbort()
	default:
		err = fmt.Errorf("%w: unknown drag event %q", reorder.ErrInvalidMove, event)
	}
	if err != nil {
		return nil, err
	}
	return snapshot(c), nil
}

// Save flushes the session's working copy. On success viewers are told to
// re-read; on failure the session stays open for a retry. Once issued the
// batch runs to completion even if the caller goes away.
func (s *Service) Save(ctx context.Context, userID string) ([]reorder.Update, error) {
	updates, err := s.coordinator(userID).Save(context.WithoutCancel(ctx), s.items)
	if err != nil {
		var batch *reorder.BatchError
		if errors.As(err, &batch) {
			s.log.Warn("reorder save failed",
				zap.String("user_id", userID),
				zap.Int("failed", batch.Failed),
				zap.Int("total", batch.Total),
				zap.Error(batch.Err),
			)
		}
		return nil, err
	}
	s.log.Info("gallery order saved", zap.String("user_id", userID), zap.Int("items", len(updates)))
	s.items.Invalidate()
	return updates, nil
}

// Cancel discards the session's working copy.
func (s *Service) Cancel(userID string) error {
	return s.coordinator(userID).Cancel()
}

// SaveOrder writes a complete order built elsewhere (e.g. by a client-side
// working copy). ids must name every current item exactly once.
func (s *Service) SaveOrder(ctx context.Context, ids []string) ([]reorder.Update, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := sameSet(items, ids); err != nil {
		return nil, err
	}

	updates := reorder.Positions(ids, func(id string) string { return id })
	if err := reorder.Flush(context.WithoutCancel(ctx), s.items, updates, s.limit); err != nil {
		return nil, err
	}
	s.log.Info("gallery order replaced", zap.Int("items", len(updates)))
	s.items.Invalidate()
	return updates, nil
}

func sameSet(items []media.Item, ids []string) error {
	if len(items) != len(ids) {
		return fmt.Errorf("%w: got %d ids for %d items", ErrOrderMismatch, len(ids), len(items))
	}
	current := make(map[string]bool, len(items))
	for _, it := range items {
		current[it.ID] = true
	}
	for _, id := range ids {
		if !current[id] {
			return fmt.Errorf("%w: unknown or repeated id %s", ErrOrderMismatch, id)
		}
		delete(current, id)
	}
	return nil
}

func snapshot(c *reorder.Coordinator[media.Item]) *Session {
	items := c.Working()
	steps := make([]StepControl, len(items))
	for i := range items {
		steps[i] = StepControl{Up: c.CanStep(i, reorder.Up), Down: c.CanStep(i, reorder.Down)}
	}
	if items == nil {
		items = []media.Item{}
	}
	return &Session{
		State: c.State().String(),
		Items: items,
		Steps: steps,
		Drag:  c.Drag(),
	}
}
