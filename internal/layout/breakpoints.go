// Package layout computes the row-wise masonry partition used by gallery
// views and the lightbox navigation that walks it.
package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Breakpoint maps viewport widths strictly below MaxWidth to Columns.
type Breakpoint struct {
	MaxWidth int
	Columns  int
}

// Breakpoints is an ascending breakpoint table with a fallback column count
// for widths at or above the last threshold.
type Breakpoints struct {
	Steps    []Breakpoint
	Fallback int
}

// ErrInvalidBreakpoints is returned when a breakpoint table cannot be parsed.
var ErrInvalidBreakpoints = errors.New("invalid breakpoint table")

// DefaultBreakpoints returns <640→1, <768→2, <1024→3, <1280→4, else→5.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		Steps: []Breakpoint{
			{MaxWidth: 640, Columns: 1},
			{MaxWidth: 768, Columns: 2},
			{MaxWidth: 1024, Columns: 3},
			{MaxWidth: 1280, Columns: 4},
		},
		Fallback: 5,
	}
}

// Columns resolves the column count for a viewport width. The result is
// never less than 1.
func (b Breakpoints) Columns(width int) int {
	for _, s := range b.Steps {
		if width < s.MaxWidth {
			return atLeastOne(s.Columns)
		}
	}
	return atLeastOne(b.Fallback)
}

// String renders the table in the format accepted by ParseBreakpoints.
func (b Breakpoints) String() string {
	parts := make([]string, 0, len(b.Steps)+1)
	for _, s := range b.Steps {
		parts = append(parts, fmt.Sprintf("%d:%d", s.MaxWidth, s.Columns))
	}
	parts = append(parts, fmt.Sprintf("*:%d", b.Fallback))
	return strings.Join(parts, ",")
}

// ParseBreakpoints parses a table such as "640:1,768:2,1024:3,1280:4,*:5".
// Thresholds must be strictly ascending. When the "*" entry is omitted the
// last step's column count is used as the fallback.
func ParseBreakpoints(s string) (Breakpoints, error) {
	var b Breakpoints
	fallbackSet := false

	for _, raw := range strings.Split(s, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		width, cols, ok := strings.Cut(entry, ":")
		if !ok {
			return Breakpoints{}, fmt.Errorf("%w: entry %q has no ':'", ErrInvalidBreakpoints, entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(cols))
		if err != nil || n < 1 {
			return Breakpoints{}, fmt.Errorf("%w: column count in %q must be a positive integer", ErrInvalidBreakpoints, entry)
		}

		width = strings.TrimSpace(width)
		if width == "*" {
			if fallbackSet {
				return Breakpoints{}, fmt.Errorf("%w: duplicate fallback entry", ErrInvalidBreakpoints)
			}
			b.Fallback = n
			fallbackSet = true
			continue
		}
		if fallbackSet {
			return Breakpoints{}, fmt.Errorf("%w: fallback must be the last entry", ErrInvalidBreakpoints)
		}

		w, err := strconv.Atoi(width)
		if err != nil || w <= 0 {
			return Breakpoints{}, fmt.Errorf("%w: width in %q must be a positive integer", ErrInvalidBreakpoints, entry)
		}
		if len(b.Steps) > 0 && w <= b.Steps[len(b.Steps)-1].MaxWidth {
			return Breakpoints{}, fmt.Errorf("%w: widths must be strictly ascending", ErrInvalidBreakpoints)
		}
		b.Steps = append(b.Steps, Breakpoint{MaxWidth: w, Columns: n})
	}

	if !fallbackSet {
		if len(b.Steps) == 0 {
			return Breakpoints{}, fmt.Errorf("%w: empty table", ErrInvalidBreakpoints)
		}
		b.Fallback = b.Steps[len(b.Steps)-1].Columns
	}
	return b, nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
