package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the coordinator mode.
type State int

const (
	Viewing State = iota
	Reordering
	Saving
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Reordering:
		return "reordering"
	case Saving:
		return "saving"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotReordering is returned for mutations outside reorder mode.
	ErrNotReordering = errors.New("reorder mode is not active")
	// ErrAlreadyReordering is returned when entering reorder mode twice.
	ErrAlreadyReordering = errors.New("reorder mode is already active")
	// ErrBusy is returned for any input while a save is in flight.
	ErrBusy = errors.New("save in progress")
)

// Drag is the transient drag sub-state. Hover is visual feedback only.
type Drag struct {
	Active bool `json:"active"`
	Source int  `json:"source"`
	Hover  int  `json:"hover"`
}

// Coordinator owns the working copy while in reorder mode. It never touches
// the authoritative sequence handed to Enter; the only path back to the
// record store is Save.
type Coordinator[T any] struct {
	mu      sync.Mutex
	key     func(T) string
	limit   int
	state   State
	working []T
	drag    Drag
}

// NewCoordinator creates a coordinator in Viewing state. key extracts the
// record id used for position updates; limit bounds concurrent updates
// during Save (<= 0 is unbounded).
func NewCoordinator[T any](key func(T) string, limit int) *Coordinator[T] {
	return &Coordinator[T]{key: key, limit: limit}
}

// State returns the current mode.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Working returns a copy of the working sequence (nil outside reorder mode).
func (c *Coordinator[T]) Working() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.working == nil {
		return nil
	}
	return append([]T(nil), c.working...)
}

// Drag returns the current drag sub-state.
func (c *Coordinator[T]) Drag() Drag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag
}

// Enter switches to reorder mode with a shallow copy of authoritative.
func (c *Coordinator[T]) Enter(authoritative []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Reordering:
		return ErrAlreadyReordering
	case Saving:
		return ErrBusy
	}
	c.working = append(make([]T, 0, len(authoritative)), authoritative...)
	c.drag = Drag{}
	c.state = Reordering
	return nil
}

// DragStart begins a drag gesture on index.
func (c *Coordinator[T]) DragStart(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.working) {
		return fmt.Errorf("%w: drag source %d out of range", ErrInvalidMove, index)
	}
	c.drag = Drag{Active: true, Source: index, Hover: index}
	return nil
}

// DragOver records the hovered index. The working copy is not modified.
func (c *Coordinator[T]) DragOver(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return err
	}
	if !c.drag.Active || index < 0 || index >= len(c.working) {
		return nil
	}
	c.drag.Hover = index
	return nil
}

// DragEnd performs the single move from the drag source to the last hovered
// index and reports whether the order changed.
func (c *Coordinator[T]) DragEnd() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return false, err
	}
	d := c.drag
	c.drag = Drag{}
	if !d.Active || d.Source == d.Hover {
		return false, nil
	}
	next, err := Move(c.working, d.Source, d.Hover)
	if err != nil {
		return false, err
	}
	c.working = next
	return true, nil
}

// DragAbort drops the gesture without moving anything.
func (c *Coordinator[T]) DragAbort() {
	c.mu.Lock()
	c.drag = Drag{}
	c.mu.Unlock()
}

// Commit moves source to target in the working copy.
func (c *Coordinator[T]) Commit(source, target int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return err
	}
	next, err := Move(c.working, source, target)
	if err != nil {
		return err
	}
	c.working = next
	c.drag = Drag{}
	return nil
}

// StepItem moves index one position up or down in the working copy.
func (c *Coordinator[T]) StepItem(index int, dir Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return err
	}
	next, err := Step(c.working, index, dir)
	if err != nil {
		return err
	}
	c.working = next
	return nil
}

// CanStep reports whether the up/down control for index is enabled.
func (c *Coordinator[T]) CanStep(index int, dir Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Reordering && CanStep(len(c.working), index, dir)
}

// Save flushes positions 1..N for the working copy as it stands when Save is
// called. On success the coordinator returns to Viewing and the caller must
// re-read the authoritative order. On failure it stays in Reordering with the
// working copy intact so the full batch can be retried.
func (c *Coordinator[T]) Save(ctx context.Context, w PositionWriter) ([]Update, error) {
	c.mu.Lock()
	if err := c.mutable(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	updates := Positions(c.working, c.key)
	c.state = Saving
	c.drag = Drag{}
	c.mu.Unlock()

	err := Flush(ctx, w, updates, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Reordering
		return nil, err
	}
	c.state = Viewing
	c.working = nil
	return updates, nil
}

// Cancel discards the working copy without writing anything.
func (c *Coordinator[T]) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(); err != nil {
		return err
	}
	c.state = Viewing
	c.working = nil
	c.drag = Drag{}
	return nil
}

func (c *Coordinator[T]) mutable() error {
	switch c.state {
	case Viewing:
		return ErrNotReordering
	case Saving:
		return ErrBusy
	}
	return nil
}
