package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when opening a lightbox over an empty sequence.
	ErrEmpty = errors.New("lightbox: sequence is empty")
	// ErrOutOfRange is returned when opening a lightbox at an invalid index.
	ErrOutOfRange = errors.New("lightbox: index out of range")
)

// Lightbox navigates the currently displayed sequence by logical index, so
// next/prev follow reading order regardless of which column an item sits in.
type Lightbox struct {
	count int
	index int
	open  bool
}

// NewLightbox creates a closed lightbox over count items.
func NewLightbox(count int) *Lightbox {
	return &Lightbox{count: max(count, 0)}
}

// Open shows item i.
func (l *Lightbox) Open(i int) error {
	if l.count == 0 {
		return ErrEmpty
	}
	if i < 0 || i >= l.count {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, l.count)
	}
	l.index = i
	l.open = true
	return nil
}

func (l *Lightbox) Close()       { l.open = false }
func (l *Lightbox) IsOpen() bool { return l.open }
func (l *Lightbox) Index() int   { return l.index }

func (l *Lightbox) HasPrev() bool { return l.open && l.index > 0 }
func (l *Lightbox) HasNext() bool { return l.open && l.index < l.count-1 }

// Next advances to the following item and reports whether it moved.
func (l *Lightbox) Next() bool {
	if !l.HasNext() {
		return false
	}
	l.index++
	return true
}

// Prev steps back to the preceding item and reports whether it moved.
func (l *Lightbox) Prev() bool {
	if !l.HasPrev() {
		return false
	}
	l.index--
	return true
}

// SetCount updates the length of the displayed sequence. The lightbox closes
// when the sequence becomes empty and the index is clamped otherwise.
func (l *Lightbox) SetCount(count int) {
	l.count = max(count, 0)
	if l.count == 0 {
		l.open = false
		l.index = 0
		return
	}
	if l.index >= l.count {
		l.index = l.count - 1
	}
}

// Counter renders the one-based "i / N" position label.
func (l *Lightbox) Counter() string {
	return fmt.Sprintf("%d / %d", l.index+1, l.count)
}
