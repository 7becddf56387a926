// Package editor decides how a cell is edited and converts between the
// stored value and the text shown in an edit box.
package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

// Kind selects the editor for a cell.
type Kind int

const (
	KindNone     Kind = iota // not editable (absent, null, nested)
	KindReadOnly             // the identity field
	KindToggle
	KindNumber
	KindDate
	KindLongText
	KindEmail
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindReadOnly:
		return "read-only"
	case KindToggle:
		return "toggle"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindLongText:
		return "long text"
	case KindEmail:
		return "email"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// Editable reports whether a cell of this kind accepts edits.
func (k Kind) Editable() bool {
	return k != KindNone && k != KindReadOnly
}

// Multiline reports whether the editor takes more than one line.
func (k Kind) Multiline() bool {
	return k == KindLongText
}

// DefaultLongText is the string length above which text gets a
// multi-line editor.
const DefaultLongText = 40

// DisplayLayout is how dates are shown.
const DisplayLayout = "1/2/2006, 3:04:05 PM"

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// dateLayouts are tried in order when deciding whether a string is a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	DisplayLayout,
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// parseDate tries display first, then the known layouts. Strings
// without a zone are read in loc.
func parseDate(s, display string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(display, s, loc); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.ToLower(s))
}

// Classifier picks editor kinds. The zero value uses DefaultLongText,
// DisplayLayout and local time.
type Classifier struct {
	LongText   int
	DateLayout string
	Location   *time.Location
}

func (c Classifier) dateLayout() string {
	if c.DateLayout == "" {
		return DisplayLayout
	}
	return c.DateLayout
}

func (c Classifier) longText() int {
	if c.LongText <= 0 {
		return DefaultLongText
	}
	return c.LongText
}

func (c Classifier) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Classify returns the editor kind for field holding v. Strings are
// checked as date, then long text, then email, then plain text.
func (c Classifier) Classify(field string, v record.Value) Kind {
	if field == record.IDField {
		return KindReadOnly
	}
	switch v.Kind() {
	case record.KindBool:
		return KindToggle
	case record.KindNumber:
		return KindNumber
	case record.KindString:
		s := v.AsString()
		if _, ok := parseDate(s, c.dateLayout(), c.location()); ok {
			return KindDate
		}
		if len([]rune(s)) > c.longText() {
			return KindLongText
		}
		if IsEmail(s) {
			return KindEmail
		}
		return KindText
	default:
		return KindNone
	}
}

// Classify uses the zero Classifier.
func Classify(field string, v record.Value) Kind {
	return Classifier{}.Classify(field, v)
}

// Editor converts between a stored value and editable text.
type Editor interface {
	// Render returns the text shown in the cell and the edit box.
	Render(v record.Value) string
	// Parse turns the edit box text into the value to commit.
	Parse(input string) (record.Value, error)
}

// Editor returns the editor for kind, or nil when the kind is not
// editable.
func (c Classifier) Editor(kind Kind) Editor {
	switch kind {
	case KindToggle:
		return toggleEditor{}
	case KindNumber:
		return numberEditor{}
	case KindDate:
		return dateEditor{loc: c.location(), layout: c.dateLayout()}
	case KindEmail:
		return emailEditor{}
	case KindText, KindLongText:
		return textEditor{}
	default:
		return nil
	}
}

type toggleEditor struct{}

func (toggleEditor) Render(v record.Value) string { return v.String() }

func (toggleEditor) Parse(input string) (record.Value, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return record.Value{}, invalid("toggle", input, err)
	}
	return record.Bool(b), nil
}

// Toggle returns v with its boolean flipped.
func Toggle(v record.Value) record.Value {
	return record.Bool(!v.AsBool())
}

type numberEditor struct{}

func (numberEditor) Render(v record.Value) string { return v.String() }

func (numberEditor) Parse(input string) (record.Value, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return record.Number(0), nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return record.Value{}, invalid("number", input, err)
	}
	return record.Number(n), nil
}

type dateEditor struct {
	loc    *time.Location
	layout string
}

func (e dateEditor) Render(v record.Value) string {
	t, ok := parseDate(v.AsString(), e.layout, e.loc)
	if !ok {
		return v.String()
	}
	return t.In(e.loc).Format(e.layout)
}

// Parse accepts any recognized layout and commits RFC 3339 with the
// zone offset.
func (e dateEditor) Parse(input string) (record.Value, error) {
	t, ok := parseDate(input, e.layout, e.loc)
	if !ok {
		return record.Value{}, invalid("date", input, nil)
	}
	return record.String(t.In(e.loc).Format(time.RFC3339)), nil
}

type textEditor struct{}

func (textEditor) Render(v record.Value) string { return v.AsString() }

func (textEditor) Parse(input string) (record.Value, error) {
	return record.String(input), nil
}

type emailEditor struct{}

func (emailEditor) Render(v record.Value) string { return v.AsString() }

func (emailEditor) Parse(input string) (record.Value, error) {
	s := strings.TrimSpace(input)
	// An empty box clears the address.
	if s != "" && !IsEmail(s) {
		return record.Value{}, invalid("email", input, nil)
	}
	return record.String(s), nil
}

func invalid(kind, input string, err error) error {
	e := util.NewError(fmt.Sprintf("Invalid %s", kind)).
		WithMessage(fmt.Sprintf("%q is not a valid %s", input, kind))
	if err != nil {
		return e.Wrap(fmt.Errorf("%w: %w", util.ErrInvalidValue, err))
	}
	return e.Wrap(util.ErrInvalidValue)
}
