package layout

import (
	"errors"
	"testing"
)

func TestDefaultBreakpoints_Columns(t *testing.T) {
	bp := DefaultBreakpoints()
	tests := []struct {
		width int
		want  int
	}{
		{0, 1},
		{639, 1},
		{640, 2},
		{767, 2},
		{768, 3},
		{1023, 3},
		{1024, 4},
		{1279, 4},
		{1280, 5},
		{4000, 5},
	}
	for _, tt := range tests {
		if got := bp.Columns(tt.width); got != tt.want {
			t.Errorf("width %d: expected %d columns, got %d", tt.width, tt.want, got)
		}
	}
}

func TestBreakpoints_ClampsToOne(t *testing.T) {
	bp := Breakpoints{Steps: []Breakpoint{{MaxWidth: 500, Columns: 0}}, Fallback: -1}
	if got := bp.Columns(100); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := bp.Columns(900); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestParseBreakpoints(t *testing.T) {
	bp, err := ParseBreakpoints("640:1, 768:2,1024:3,1280:4,*:5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.String() != DefaultBreakpoints().String() {
		t.Errorf("expected %q, got %q", DefaultBreakpoints().String(), bp.String())
	}
}

func TestParseBreakpoints_ImplicitFallback(t *testing.T) {
	bp, err := ParseBreakpoints("600:1,900:2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.Fallback != 2 {
		t.Errorf("expected fallback 2, got %d", bp.Fallback)
	}
	if got := bp.Columns(2000); got != 2 {
		t.Errorf("expected 2 columns, got %d", got)
	}
}

func TestParseBreakpoints_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"640",
		"640:x",
		"640:0",
		"768:2,640:1",
		"640:1,640:2",
		"*:3,640:1",
		"*:3,*:4",
		"-5:1",
	}
	for _, in := range inputs {
		if _, err := ParseBreakpoints(in); !errors.Is(err, ErrInvalidBreakpoints) {
			t.Errorf("%q: expected ErrInvalidBreakpoints, got %v", in, err)
		}
	}
}
