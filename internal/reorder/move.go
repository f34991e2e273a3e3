// Package reorder implements the gallery reorder workflow: a detached working
// copy of the authoritative order that is rearranged locally and flushed to
// the record store as a batch of absolute position updates.
package reorder

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is a single-step move used by up/down controls.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// ErrInvalidMove is returned for out-of-bounds or no-op moves.
var ErrInvalidMove = errors.New("invalid move")

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidMove, s)
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Move removes the element at from and reinserts it at to. Elements between
// the two positions shift by one; this is not a swap. seq is left untouched.
func Move[T any](seq []T, from, to int) ([]T, error) {
	n := len(seq)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: %d → %d with %d items", ErrInvalidMove, from, to, n)
	}
	if from == to {
		return nil, fmt.Errorf("%w: source and target are both %d", ErrInvalidMove, from)
	}

	item := seq[from]
	out := make([]T, 0, n)
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	out = append(out, item)
	copy(out[to+1:], out[to:])
	out[to] = item
	return out, nil
}

// CanStep reports whether index can move one step in dir within n items.
// Index 0 has no "up" and the last index has no "down".
func CanStep(n, index int, dir Direction) bool {
	if index < 0 || index >= n {
		return false
	}
	switch dir {
	case Up:
		return index > 0
	case Down:
		return index < n-1
	}
	return false
}

// Step moves the element at index one position in dir.
func Step[T any](seq []T, index int, dir Direction) ([]T, error) {
	if !CanStep(len(seq), index, dir) {
		return nil, fmt.Errorf("%w: cannot move %d %s", ErrInvalidMove, index, dir)
	}
	return Move(seq, index, index+int(dir))
}
