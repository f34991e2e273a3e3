package layout

// Partition assigns item indices 0..itemCount-1 to columns round-robin:
// columns[c] holds c, c+C, c+2C, ... in ascending order. A column count below
// 1 is treated as 1 and a negative item count as 0.
func Partition(itemCount, columns int) [][]int {
	columns = atLeastOne(columns)
	if itemCount < 0 {
		itemCount = 0
	}

	out := make([][]int, columns)
	for c := range out {
		// ceil((itemCount-c)/columns) items land in column c
		n := 0
		if itemCount > c {
			n = (itemCount - c + columns - 1) / columns
		}
		out[c] = make([]int, 0, n)
	}
	for i := 0; i < itemCount; i++ {
		out[i%columns] = append(out[i%columns], i)
	}
	return out
}

// Interleave merges columns row by row, left to right. For any partition
// produced by Partition it reconstructs 0..N-1 in order.
func Interleave(columns [][]int) []int {
	total, rows := 0, 0
	for _, col := range columns {
		total += len(col)
		if len(col) > rows {
			rows = len(col)
		}
	}

	out := make([]int, 0, total)
	for r := 0; r < rows; r++ {
		for _, col := range columns {
			if r < len(col) {
				out = append(out, col[r])
			}
		}
	}
	return out
}

// Cell is the visual slot of an item inside a partition.
type Cell struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Locate returns the cell that Partition places logical index i into.
func Locate(i, columns int) Cell {
	columns = atLeastOne(columns)
	return Cell{Column: i % columns, Row: i / columns}
}
