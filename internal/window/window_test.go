package window

import (
	"testing"
)

func TestCompute_TwoRowsFitWithoutSpacers(t *testing.T) {
	w := Compute(2, State{ScrollOffset: 0, RowHeight: 140, VisibleCount: 5})

	if w.TopSpacer != 0 || w.BottomSpacer != 0 {
		t.Fatalf("expected no spacers, got top=%d bottom=%d", w.TopSpacer, w.BottomSpacer)
	}
	if w.First != 0 || w.End != 2 {
		t.Fatalf("expected rows [0,2), got [%d,%d)", w.First, w.End)
	}
}

func TestCompute_StartsAtFloorOfOffset(t *testing.T) {
	w := Compute(100, State{ScrollOffset: 1000, RowHeight: 140, VisibleCount: 5})

	if w.First != 7 {
		t.Fatalf("first: got %d, want 7", w.First)
	}
	if w.Len() != 6 {
		t.Fatalf("len: got %d, want visibleCount+1 = 6", w.Len())
	}
	if w.TopSpacer != 980 {
		t.Fatalf("top: got %d, want 980", w.TopSpacer)
	}
	if w.BottomSpacer != 140*(99-12) {
		t.Fatalf("bottom: got %d, want %d", w.BottomSpacer, 140*(99-12))
	}
}

func TestCompute_ClampsPastTheEnd(t *testing.T) {
	w := Compute(10, State{ScrollOffset: 1 << 20, RowHeight: 1, VisibleCount: 3})

	if w.First != 9 || w.End != 10 {
		t.Fatalf("expected last row only, got [%d,%d)", w.First, w.End)
	}
	if w.BottomSpacer != 0 {
		t.Fatalf("bottom: got %d, want 0", w.BottomSpacer)
	}
}

func TestCompute_EmptySequence(t *testing.T) {
	w := Compute(0, State{ScrollOffset: 500, RowHeight: 140, VisibleCount: 5})

	if w.Len() != 0 || w.First != 0 {
		t.Fatalf("expected empty window at 0, got [%d,%d)", w.First, w.End)
	}
	if w.TopSpacer != 0 || w.BottomSpacer != 0 {
		t.Fatalf("expected no spacers, got top=%d bottom=%d", w.TopSpacer, w.BottomSpacer)
	}
}

func TestCompute_NormalizesBadGeometry(t *testing.T) {
	w := Compute(10, State{ScrollOffset: -50, RowHeight: 0, VisibleCount: -2})

	if w.First != 0 || w.Len() != 1 {
		t.Fatalf("expected one row at 0, got [%d,%d)", w.First, w.End)
	}
}

func TestCompute_BoundsProperty(t *testing.T) {
	for _, total := range []int{0, 1, 2, 5, 6, 7, 50, 1000} {
		for _, visible := range []int{0, 1, 5, 20} {
			for _, h := range []int{1, 3, 140} {
				for offset := 0; offset <= total*h+2*h; offset += h/2 + 1 {
					w := Compute(total, State{ScrollOffset: offset, RowHeight: h, VisibleCount: visible})

					if w.Len() > visible+1 || w.Len() < 0 {
						t.Fatalf("total=%d visible=%d h=%d offset=%d: len %d out of bounds",
							total, visible, h, offset, w.Len())
					}
					if w.End > total || w.First < 0 {
						t.Fatalf("total=%d offset=%d: window [%d,%d) outside sequence",
							total, offset, w.First, w.End)
					}

					sum := w.TopSpacer + w.BottomSpacer + h*w.Len()
					want := h * total
					if diff := sum - want; diff > h || diff < -h {
						t.Fatalf("total=%d visible=%d h=%d offset=%d: height %d, want %d±%d",
							total, visible, h, offset, sum, want, h)
					}
				}
			}
		}
	}
}

func TestSlice(t *testing.T) {
	rows := []string{"a", "b", "c", "d"}

	got := Slice(rows, Compute(len(rows), State{ScrollOffset: 2, RowHeight: 1, VisibleCount: 1}))
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Fatalf("got %v, want [c d]", got)
	}

	if got := Slice(rows, Window{First: 9, End: 12}); got != nil {
		t.Fatalf("expected nil for out-of-range window, got %v", got)
	}
}

func TestMaxOffset(t *testing.T) {
	if got := MaxOffset(10, State{RowHeight: 2, VisibleCount: 4}); got != 12 {
		t.Fatalf("got %d, want 12", got)
	}
	if got := MaxOffset(3, State{RowHeight: 2, VisibleCount: 4}); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
