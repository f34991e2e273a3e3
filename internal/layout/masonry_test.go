package layout

import (
	"reflect"
	"testing"
)

func TestPartition_RoundRobin(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for c := 1; c <= 6; c++ {
			cols := Partition(n, c)
			if len(cols) != c {
				t.Fatalf("n=%d c=%d: expected %d columns, got %d", n, c, c, len(cols))
			}
			for i := 0; i < n; i++ {
				cell := Locate(i, c)
				if got := cols[cell.Column][cell.Row]; got != i {
					t.Fatalf("n=%d c=%d: expected item %d at column %d row %d, got %d", n, c, i, cell.Column, cell.Row, got)
				}
			}

			merged := Interleave(cols)
			if len(merged) != n {
				t.Fatalf("n=%d c=%d: interleave returned %d items", n, c, len(merged))
			}
			for i, v := range merged {
				if v != i {
					t.Fatalf("n=%d c=%d: interleave out of order at %d: %v", n, c, i, merged)
				}
			}
		}
	}
}

func TestPartition_ColumnSizes(t *testing.T) {
	cols := Partition(7, 3)
	want := [][]int{{0, 3, 6}, {1, 4}, {2, 5}}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("expected %v, got %v", want, cols)
	}
}

func TestPartition_Empty(t *testing.T) {
	for c := 1; c <= 5; c++ {
		cols := Partition(0, c)
		if len(cols) != c {
			t.Fatalf("expected %d columns, got %d", c, len(cols))
		}
		for i, col := range cols {
			if len(col) != 0 {
				t.Errorf("c=%d: column %d should be empty, got %v", c, i, col)
			}
		}
	}
}

func TestPartition_ClampsColumns(t *testing.T) {
	for _, c := range []int{0, -3} {
		cols := Partition(4, c)
		if len(cols) != 1 {
			t.Fatalf("c=%d: expected a single column, got %d", c, len(cols))
		}
		if !reflect.DeepEqual(cols[0], []int{0, 1, 2, 3}) {
			t.Errorf("c=%d: unexpected column %v", c, cols[0])
		}
	}
}

func TestPartition_NegativeCount(t *testing.T) {
	cols := Partition(-2, 2)
	if len(cols[0]) != 0 || len(cols[1]) != 0 {
		t.Errorf("expected empty columns, got %v", cols)
	}
}
