// Package view is the single state container of a loaded dataset and the
// pure pipeline that turns it into what is rendered:
//
//	edited set → filter → order → window → RenderModel
//
// Store is the only mutable piece. It changes through Load, ApplyEdit,
// SetFilter, ToggleSort and Scroll, and each call runs every downstream
// stage before it returns, so no reader ever sees a half-propagated
// state.
package view

import (
	"github.com/imgajeed76/sheetview/internal/filter"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/window"
)

// Status tells the renderer which placeholder, if any, to show.
type Status int

const (
	// StatusEmpty means nothing was loaded; render nothing.
	StatusEmpty Status = iota
	// StatusLoading means records exist but have not been derived yet.
	StatusLoading
	// StatusNoData means derivation ran and no row survived it.
	StatusNoData
	// StatusRows means there are rows to render.
	StatusRows
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading..."
	case StatusNoData:
		return "No data"
	case StatusRows:
		return "rows"
	default:
		return ""
	}
}

// Derived holds the filter and order stage results.
type Derived struct {
	Visible *record.Set
	Ordered []record.Entry
}

// Derive runs the filter and order stages over the edited set.
func Derive(edited *record.Set, f filter.Spec, s order.Spec) Derived {
	visible := filter.Apply(edited, f)
	return Derived{
		Visible: visible,
		Ordered: order.Apply(visible, s),
	}
}

// RenderModel is everything a renderer needs for one frame.
type RenderModel struct {
	Columns []string
	// Rows is the windowed slice of the ordered sequence.
	Rows []record.Entry
	// First is the index of Rows[0] within the ordered sequence.
	First int
	// Total is the length of the ordered sequence.
	Total int
	// Loaded is the number of records in the edited set.
	Loaded int

	TopSpacer    int
	BottomSpacer int

	Filter filter.Spec
	Sort   order.Spec
	Window window.State
	Status Status
}

// DeriveView is the whole pipeline as one pure function.
func DeriveView(edited *record.Set, columns []string, f filter.Spec, s order.Spec, ws window.State) RenderModel {
	d := Derive(edited, f, s)
	return render(columns, edited.Len(), d.Ordered, f, s, ws, true)
}

func render(columns []string, loaded int, ordered []record.Entry, f filter.Spec, s order.Spec, ws window.State, derived bool) RenderModel {
	w := window.Compute(len(ordered), ws)
	m := RenderModel{
		Columns:      columns,
		Rows:         window.Slice(ordered, w),
		First:        w.First,
		Total:        len(ordered),
		Loaded:       loaded,
		TopSpacer:    w.TopSpacer,
		BottomSpacer: w.BottomSpacer,
		Filter:       f,
		Sort:         s,
		Window:       ws,
	}

	switch {
	case loaded == 0:
		m.Status = StatusEmpty
	case !derived:
		m.Status = StatusLoading
	case len(ordered) == 0:
		m.Status = StatusNoData
	default:
		m.Status = StatusRows
	}
	return m
}
