// Package window computes which slice of an ordered row sequence is
// rendered for a scroll position, plus the spacer heights above and
// below it that keep the full list's scrollable height.
//
// The computation is pure arithmetic on the sequence length, so it costs
// the same for ten rows as for ten million and can run on every scroll
// event without debouncing.
package window

// State is the scroll position and the geometry of the viewport.
type State struct {
	ScrollOffset int // distance scrolled from the top, in the same unit as RowHeight
	RowHeight    int // height of one row
	VisibleCount int // rows that fit in the viewport
}

// Window is the rendered range [First, End) of the ordered sequence.
type Window struct {
	First        int
	End          int
	TopSpacer    int
	BottomSpacer int
}

// Len returns the number of rows in the window.
func (w Window) Len() int {
	return w.End - w.First
}

// Normalize clamps nonsensical geometry: a negative offset becomes 0, a
// row height below 1 becomes 1 and a negative visible count becomes 0.
func (s State) Normalize() State {
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
	if s.RowHeight < 1 {
		s.RowHeight = 1
	}
	if s.VisibleCount < 0 {
		s.VisibleCount = 0
	}
	return s
}

// Reset returns the state scrolled back to the top.
func (s State) Reset() State {
	s.ScrollOffset = 0
	return s
}

// Compute returns the window over a sequence of total rows. The window
// starts at floor(offset/rowHeight), clamped to the last row, and holds
// visibleCount+1 rows so one row is always prefetched below the fold.
func Compute(total int, state State) Window {
	s := state.Normalize()

	first := s.ScrollOffset / s.RowHeight
	if last := max(0, total-1); first > last {
		first = last
	}

	end := min(total, first+s.VisibleCount+1)
	if end < first {
		end = first
	}

	return Window{
		First:        first,
		End:          end,
		TopSpacer:    s.RowHeight * first,
		BottomSpacer: max(0, s.RowHeight*((total-1)-(first+s.VisibleCount))),
	}
}

// Slice returns the part of rows covered by w.
func Slice[T any](rows []T, w Window) []T {
	if w.First >= len(rows) {
		return nil
	}
	return rows[w.First:min(w.End, len(rows))]
}

// MaxOffset is the largest offset that still shows a full viewport of
// rows, or 0 when everything fits.
func MaxOffset(total int, state State) int {
	s := state.Normalize()
	return max(0, (total-s.VisibleCount)*s.RowHeight)
}
