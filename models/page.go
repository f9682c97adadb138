package models

import "math"

// Page selects a window of the task list. The zero Page selects every task.
type Page struct {
	Number int
	Size   int
}

// All reports whether p selects the whole list.
func (p Page) All() bool {
	return p.Number == 0 && p.Size == 0
}

// Offset returns the number of tasks to skip. It saturates at math.MaxInt
// instead of overflowing.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}
