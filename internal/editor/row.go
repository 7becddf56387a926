package editor

import (
	"fmt"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

// Cell is one rendered field of a row.
type Cell struct {
	Field string
	Value record.Value
	Kind  Kind
	Text  string
}

// RowContext binds a row's identity to its edit sink. Field changes are
// delivered as single-field patches.
type RowContext struct {
	ID            record.ID
	HeaderKeys    []string
	Record        *record.Record
	OnFieldChange func(id record.ID, patch record.Patch) error

	Classifier Classifier
}

// Cells renders the row in header order. Fields without an editor
// render empty, the identity field renders as is.
func (rc RowContext) Cells() []Cell {
	cells := make([]Cell, len(rc.HeaderKeys))
	for i, field := range rc.HeaderKeys {
		v := rc.Record.Get(field)
		kind := rc.Classifier.Classify(field, v)
		cell := Cell{Field: field, Value: v, Kind: kind}
		switch {
		case kind == KindReadOnly:
			cell.Text = v.String()
		case kind.Editable():
			cell.Text = rc.Classifier.Editor(kind).Render(v)
		}
		cells[i] = cell
	}
	return cells
}

// Commit parses input with the field's editor and sends the patch.
func (rc RowContext) Commit(field, input string) error {
	v := rc.Record.Get(field)
	kind := rc.Classifier.Classify(field, v)
	if !kind.Editable() {
		return notEditable(field, kind)
	}

	next, err := rc.Classifier.Editor(kind).Parse(input)
	if err != nil {
		return err
	}
	return rc.send(field, next)
}

// Toggle flips a boolean field.
func (rc RowContext) Toggle(field string) error {
	v := rc.Record.Get(field)
	if kind := rc.Classifier.Classify(field, v); kind != KindToggle {
		return notEditable(field, kind)
	}
	return rc.send(field, Toggle(v))
}

func (rc RowContext) send(field string, v record.Value) error {
	if rc.OnFieldChange == nil {
		return nil
	}
	return rc.OnFieldChange(rc.ID, record.Patch{field: v})
}

func notEditable(field string, kind Kind) error {
	if kind == KindReadOnly {
		return util.NewError(fmt.Sprintf("'%s' is read-only", field)).
			WithMessage("The identity field cannot be edited").
			Wrap(util.ErrReadOnlyField)
	}
	return util.NewError(fmt.Sprintf("'%s' cannot be edited", field)).
		WithMessage("Only booleans, numbers and strings have an editor").
		Wrap(util.ErrNotEditable)
}
