package layout

import "sync"

// Engine keeps the masonry partition in sync with the viewport width and item
// count. It recomputes only when the resolved column count or the item count
// actually changes, so a stream of resize events inside one breakpoint band
// costs nothing.
type Engine struct {
	mu          sync.RWMutex
	breakpoints Breakpoints
	columnCount int
	itemCount   int
	columns     [][]int
}

// NewEngine creates an Engine resolved for the given width and item count.
func NewEngine(bp Breakpoints, width, itemCount int) *Engine {
	e := &Engine{breakpoints: bp}
	e.columnCount = bp.Columns(width)
	e.itemCount = max(itemCount, 0)
	e.columns = Partition(e.itemCount, e.columnCount)
	return e
}

// Resize reports whether the width crossed a breakpoint and the partition
// was recomputed.
func (e *Engine) Resize(width int) bool {
	n := e.breakpoints.Columns(width)

	e.mu.Lock()
	defer e.mu.Unlock()
	if n == e.columnCount {
		return false
	}
	e.columnCount = n
	e.columns = Partition(e.itemCount, n)
	return true
}

// SetItemCount reports whether the item count changed and the partition was
// recomputed.
func (e *Engine) SetItemCount(n int) bool {
	n = max(n, 0)

	e.mu.Lock()
	defer e.mu.Unlock()
	if n == e.itemCount {
		return false
	}
	e.itemCount = n
	e.columns = Partition(n, e.columnCount)
	return true
}

// ColumnCount returns the currently resolved column count.
func (e *Engine) ColumnCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.columnCount
}

// Columns returns a copy of the current partition.
func (e *Engine) Columns() [][]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([][]int, len(e.columns))
	for i, col := range e.columns {
		out[i] = append([]int(nil), col...)
	}
	return out
}
