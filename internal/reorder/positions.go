package reorder

// Update sets the absolute position of one record.
type Update struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Positions assigns position index+1 to every element of seq.
func Positions[T any](seq []T, key func(T) string) []Update {
	out := make([]Update, len(seq))
	for i, item := range seq {
		out[i] = Update{ID: key(item), Position: i + 1}
	}
	return out
}

// Normalized reports whether the positions in updates are exactly 1..N, each
// used once.
func Normalized(updates []Update) bool {
	seen := make([]bool, len(updates)+1)
	for _, u := range updates {
		if u.Position < 1 || u.Position > len(updates) || seen[u.Position] {
			return false
		}
		seen[u.Position] = true
	}
	return true
}
