package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/imgajeed76/sheetview/internal/changes"
	"github.com/imgajeed76/sheetview/internal/clock"
	"github.com/imgajeed76/sheetview/internal/debounce"
	"github.com/imgajeed76/sheetview/internal/editor"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/ui/styles"
	"github.com/imgajeed76/sheetview/internal/util"
	"github.com/imgajeed76/sheetview/internal/view"
)

// ═══════════════════════════════════════════════════════════════════════════
// Constants
// ═══════════════════════════════════════════════════════════════════════════

const (
	defaultColWidth = 20
	minColWidth     = 3
	hiddenColWidth  = 3

	// title, bar, header, separator, indicators, footer
	chromeLines = 6

	wheelRows = 3
)

// Column display state
type colState int

const (
	colStateDefault  colState = iota // truncated to defaultColWidth
	colStateExpanded                 // full width
	colStateHidden                   // minimal width (just "...")
)

// Table mode
type tableMode int

const (
	tableModeNormal tableMode = iota
	tableModeFilter
	tableModeEdit
	tableModeChanges
)

// exitMode selects what is printed after quitting the TUI
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// ═══════════════════════════════════════════════════════════════════════════
// Options
// ═══════════════════════════════════════════════════════════════════════════

// Options configures the interactive table and the printers.
type Options struct {
	Title string
	Store *view.Store

	// Load fetches the records. In the TUI it runs off the event loop
	// while "Loading..." is shown. Nil means Store is already loaded.
	Load func(ctx context.Context) ([]*record.Record, error)
	// Preset is applied right after Load.
	Preset view.Preset

	Classifier editor.Classifier
	// Debounce is the quiet period before typed filter text applies.
	Debounce time.Duration
	Clock    clock.Clock

	// RowHeight is the scroll unit of one row. VisibleRows caps the
	// page size; 0 fits the terminal.
	RowHeight   int
	VisibleRows int

	Logger *slog.Logger
	// Output receives exports. Defaults to stdout.
	Output io.Writer
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Debounce <= 0 {
		o.Debounce = debounce.DefaultDelay
	}
	if o.RowHeight < 1 {
		o.RowHeight = 1
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	return o
}

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

type tableModel struct {
	ctx    context.Context
	opts   Options
	store  *view.Store
	logger *slog.Logger

	columns       []string
	fullColWidths []int      // widest cell text of each column
	colStates     []colState // display state for each column
	cursor        int        // selected row in the ordered sequence
	colCursor     int        // selected column
	scrollX       int        // horizontal scroll offset in cells
	scrollY       int        // first rendered row
	width         int        // terminal width
	height        int        // terminal height
	ready         bool
	mode          tableMode
	exitMode      exitMode
	err           error

	// Column filters
	filterInput textinput.Model
	filterField string
	filterCh    chan filterMsg
	debouncer   *debounce.Debouncer

	// Cell editor
	edit editState

	// Edits against the loaded dataset
	changes []changes.Change
	edited  map[record.ID]map[string]bool

	// Animation state for smooth scrolling
	animating   bool
	animTargetX int
	animTargetY int

	// Status message (flash notification, e.g. after yank)
	statusMsg   string
	statusErr   bool
	statusUntil time.Time
}

type editState struct {
	id    record.ID
	field string
	kind  editor.Kind
	input textinput.Model
	area  textarea.Model
	err   error
}

type loadedMsg struct {
	records []*record.Record
	err     error
}

type filterMsg struct {
	field string
	text  string
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	ShiftUp     key.Binding
	ShiftDown   key.Binding
	ShiftLeft   key.Binding
	ShiftRight  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Expand      key.Binding
	Hide        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	ClearAll    key.Binding
	Sort        key.Binding
	Edit        key.Binding
	Changes     key.Binding
	Quit        key.Binding
	YankCell    key.Binding
	YankRow     key.Binding
	ExportJSON  key.Binding
	ExportRaw   key.Binding
	ExportPlain key.Binding
	Save        key.Binding
	Cancel      key.Binding
}

var tableKeys = tableKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev column")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next column")),
	ShiftUp:     key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("⇧↑", "half page up")),
	ShiftDown:   key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("⇧↓", "half page down")),
	ShiftLeft:   key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "scroll half left")),
	ShiftRight:  key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "scroll half right")),
	PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
	End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	Expand:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "widen/default")),
	Hide:        key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide/default")),
	Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter column")),
	ClearFilter: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filter")),
	ClearAll:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all filters")),
	Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Edit:        key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
	Changes:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "changes")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	YankCell:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	YankRow:     key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row")),
	ExportJSON:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	ExportRaw:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	ExportPlain: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// Run launches the interactive table. It blocks until the user quits.
// If the user requests an export (J/R/P), the edited view is printed to
// opts.Output after the TUI exits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, opts)
	defer m.debouncer.CancelAll()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	// Data piped on stdin: read keys from the terminal instead
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		progOpts = append(progOpts, tea.WithInputTTY())
	}

	p := tea.NewProgram(m, progOpts...)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(tableModel)
	if !ok {
		return nil
	}
	if fm.err != nil {
		return fm.err
	}
	return export(fm.opts.Output, fm.exitMode, fm.store)
}

func newModel(ctx context.Context, opts Options) tableModel {
	opts = opts.withDefaults()

	fi := textinput.New()
	fi.Placeholder = "filter..."
	fi.CharLimit = 200
	fi.Width = 30
	fi.Prompt = ""

	m := tableModel{
		ctx:         ctx,
		opts:        opts,
		store:       opts.Store,
		logger:      opts.Logger,
		filterInput: fi,
		filterCh:    make(chan filterMsg),
	}

	// The debouncer fires on a timer goroutine; the value is handed to
	// the event loop through filterCh.
	ch := m.filterCh
	m.debouncer = debounce.New(opts.Clock, opts.Debounce, func(field, text string) {
		select {
		case ch <- filterMsg{field: field, text: text}:
		case <-ctx.Done():
		}
	})

	if opts.Load != nil {
		m.store.BeginLoad()
	} else {
		m.resetColumns()
	}
	return m
}

func export(w io.Writer, mode exitMode, store *view.Store) error {
	switch mode {
	case exitJSON:
		return WriteJSON(w, store.Ordered())
	case exitRaw:
		return WriteRaw(w, store.Columns(), store.Ordered())
	case exitPlain:
		return WritePlain(w, store.Columns(), store.Ordered())
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForFilter()}
	if m.opts.Load != nil {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m tableModel) loadCmd() tea.Cmd {
	load, ctx := m.opts.Load, m.ctx
	return func() tea.Msg {
		records, err := load(ctx)
		return loadedMsg{records: records, err: err}
	}
}

func (m tableModel) waitForFilter() tea.Cmd {
	ch, done := m.filterCh, m.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

// Update runs one event and then moves the store's window to the rows
// on screen. Scrolling only re-runs the window stage.
func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncWindow()
	return next, cmd
}

func (m tableModel) update(msg tea.Msg) (tableModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.mode == tableModeEdit && m.edit.kind.Multiline() {
			m.edit.area.SetWidth(m.modalWidth())
		}
		m.store.SetViewport(m.opts.RowHeight, m.visibleRowCount())
		m.ensureRowVisible()
		return m, nil

	case loadedMsg:
		return m.finishLoad(msg)

	case filterMsg:
		m.applyFilter(msg.field, msg.text)
		return m, m.waitForFilter()

	case animTickMsg:
		cmd := m.updateAnimation()
		return m, cmd

	case statusClearMsg:
		// Clear the flash message if it has expired
		if !m.statusUntil.IsZero() && m.opts.Clock.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode != tableModeNormal || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollRows(-wheelRows)
		case tea.MouseButtonWheelDown:
			m.scrollRows(wheelRows)
		}
		return m, nil

	case tea.KeyMsg:
		// Cancel any ongoing animation when user presses a key
		m.cancelAnimation()

		switch m.mode {
		case tableModeFilter:
			return m.updateFilter(msg)
		case tableModeEdit:
			return m.updateEdit(msg)
		case tableModeChanges:
			if key.Matches(msg, tableKeys.Quit, tableKeys.Changes) {
				m.mode = tableModeNormal
			}
			return m, nil
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m tableModel) updateNormal(msg tea.KeyMsg) (tableModel, tea.Cmd) {
	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Filter):
		if len(m.columns) == 0 {
			return m, nil
		}
		m.mode = tableModeFilter
		m.filterField = m.columns[m.colCursor]
		text, ok := m.debouncer.Pending(m.filterField)
		if !ok {
			text = m.store.Filter()[m.filterField]
		}
		m.filterInput.SetValue(text)
		m.filterInput.CursorEnd()
		cmd := m.filterInput.Focus()
		return m, cmd

	case key.Matches(msg, tableKeys.ClearFilter):
		if len(m.columns) == 0 {
			return m, nil
		}
		field := m.columns[m.colCursor]
		m.debouncer.Cancel(field)
		m.applyFilter(field, "")

	case key.Matches(msg, tableKeys.ClearAll):
		m.debouncer.CancelAll()
		if m.store.ClearFilters() {
			m.cursor = 0
			m.scrollY = 0
		}

	case key.Matches(msg, tableKeys.Sort):
		if len(m.columns) == 0 {
			return m, nil
		}
		spec := m.store.ToggleSort(m.columns[m.colCursor])
		m.cursor = 0
		m.scrollY = 0
		if !spec.IsSet() {
			cmd := m.setStatus("Sort cleared")
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("Sorted by %s %s", spec.Field, spec.Direction))
		return m, cmd

	case key.Matches(msg, tableKeys.Edit):
		return m.startEdit()

	case key.Matches(msg, tableKeys.Changes):
		m.mode = tableModeChanges

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < m.store.Len()-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		colStartX := m.getColStartX(m.colCursor)

		if colStartX < m.scrollX {
			m.scrollX = max(colStartX, m.scrollX-3, 0)
		} else if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisibleFromRight()
		}

	case key.Matches(msg, tableKeys.Right):
		colEndX := m.getColEndX(m.colCursor)
		viewportEndX := m.scrollX + m.viewportWidth()

		if colEndX > viewportEndX {
			m.scrollX = min(m.scrollX+3, m.getMaxScrollX())
		} else if m.colCursor < len(m.columns)-1 {
			m.colCursor++
			m.ensureColVisibleFromLeft()
		}

	case key.Matches(msg, tableKeys.ShiftLeft):
		halfWidth := max(m.width/2, 1)
		cmd := m.startAnimation(m.scrollX-halfWidth, m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftRight):
		halfWidth := max(m.width/2, 1)
		cmd := m.startAnimation(m.scrollX+halfWidth, m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftUp):
		halfPage := max(m.visibleRowCount()/2, 1)
		m.cursor = max(m.cursor-halfPage, 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY-halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftDown):
		halfPage := max(m.visibleRowCount()/2, 1)
		m.cursor = max(min(m.cursor+halfPage, m.store.Len()-1), 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY+halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.PageUp):
		m.cursor = max(m.cursor-m.visibleRowCount(), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.PageDown):
		m.cursor = max(min(m.cursor+m.visibleRowCount(), m.store.Len()-1), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.Home):
		m.cursor = 0
		m.scrollY = 0
		m.scrollX = 0

	case key.Matches(msg, tableKeys.End):
		if n := m.store.Len(); n > 0 {
			m.cursor = n - 1
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Expand):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateExpanded {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateExpanded
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Hide):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateHidden {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateHidden
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.YankCell):
		cmd := m.yankCell()
		return m, cmd

	case key.Matches(msg, tableKeys.YankRow):
		cmd := m.yankRow()
		return m, cmd

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Loading
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) finishLoad(msg loadedMsg) (tableModel, tea.Cmd) {
	if msg.err != nil {
		m.store.AbortLoad(msg.err)
		m.err = msg.err
		return m, tea.Quit
	}

	m.debouncer.CancelAll()
	m.store.Load(msg.records)
	applyPreset(m.store, m.opts.Preset)
	m.resetColumns()
	m.cursor = 0
	m.scrollX = 0
	m.scrollY = 0
	return m, nil
}

// resetColumns rebuilds the per-column state for the store's dataset.
func (m *tableModel) resetColumns() {
	m.columns = m.store.Columns()
	m.colStates = make([]colState, len(m.columns))
	m.colCursor = 0
	m.fullColWidths = make([]int, len(m.columns))
	for i, name := range m.columns {
		m.fullColWidths[i] = runewidth.StringWidth(name)
	}
	m.store.Edited().Each(func(e record.Entry) bool {
		m.widen(e.Record)
		return true
	})
	m.refreshChanges()
}

// widen grows the column widths to fit r.
func (m *tableModel) widen(r *record.Record) {
	for i, name := range m.columns {
		if w := runewidth.StringWidth(CellText(r.Get(name))); w > m.fullColWidths[i] {
			m.fullColWidths[i] = w
		}
	}
}

func (m *tableModel) refreshChanges() {
	m.changes = changes.Compute(m.store.Loaded(), m.store.Edited(), m.columns)
	m.edited = changes.Index(m.changes)
}

// ═══════════════════════════════════════════════════════════════════════════
// Filter
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) updateFilter(msg tea.KeyMsg) (tableModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Typed text that has not applied yet is dropped.
		m.debouncer.Cancel(m.filterField)
		m.mode = tableModeNormal
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.debouncer.Cancel(m.filterField)
		m.applyFilter(m.filterField, m.filterInput.Value())
		m.mode = tableModeNormal
		m.filterInput.Blur()
		return m, nil
	}

	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if after := m.filterInput.Value(); after != before {
		m.debouncer.Trigger(m.filterField, after)
	}
	return m, cmd
}

func (m *tableModel) applyFilter(field, text string) {
	if !m.store.SetFilter(field, text) {
		return
	}
	m.cursor = 0
	m.scrollY = 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Edit
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) rowContext(e record.Entry) editor.RowContext {
	return editor.RowContext{
		ID:            e.ID,
		HeaderKeys:    m.columns,
		Record:        e.Record,
		OnFieldChange: m.store.ApplyEdit,
		Classifier:    m.opts.Classifier,
	}
}

func (m tableModel) startEdit() (tableModel, tea.Cmd) {
	entry, ok := m.store.At(m.cursor)
	if !ok || m.colCursor >= len(m.columns) {
		return m, nil
	}
	field := m.columns[m.colCursor]
	v := entry.Record.Get(field)
	kind := m.opts.Classifier.Classify(field, v)
	rc := m.rowContext(entry)

	switch {
	case !kind.Editable():
		// Commit reports why the field cannot be edited.
		cmd := m.setError(rc.Commit(field, ""))
		return m, cmd
	case kind == editor.KindToggle:
		if err := rc.Toggle(field); err != nil {
			cmd := m.setError(err)
			return m, cmd
		}
		m.afterEdit(entry.ID)
		cmd := m.setStatus(fmt.Sprintf("%s.%s = %s", entry.ID, field, editor.Toggle(v)))
		return m, cmd
	}

	text := m.opts.Classifier.Editor(kind).Render(v)
	m.edit = editState{id: entry.ID, field: field, kind: kind}
	m.mode = tableModeEdit

	if kind.Multiline() {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.CharLimit = 0
		ta.SetWidth(m.modalWidth())
		ta.SetHeight(max(3, min(10, m.height-10)))
		ta.SetValue(text)
		cmd := ta.Focus()
		m.edit.area = ta
		return m, cmd
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Width = m.modalWidth()
	ti.SetValue(text)
	ti.CursorEnd()
	cmd := ti.Focus()
	m.edit.input = ti
	return m, cmd
}

func (m tableModel) updateEdit(msg tea.KeyMsg) (tableModel, tea.Cmd) {
	multiline := m.edit.kind.Multiline()

	switch {
	case key.Matches(msg, tableKeys.Cancel):
		m.mode = tableModeNormal
		m.edit = editState{}
		return m, nil
	case key.Matches(msg, tableKeys.Save), !multiline && msg.Type == tea.KeyEnter:
		return m.commitEdit()
	}

	var cmd tea.Cmd
	if multiline {
		m.edit.area, cmd = m.edit.area.Update(msg)
	} else {
		m.edit.input, cmd = m.edit.input.Update(msg)
	}
	m.edit.err = nil
	return m, cmd
}

func (m tableModel) commitEdit() (tableModel, tea.Cmd) {
	input := m.edit.input.Value()
	if m.edit.kind.Multiline() {
		input = m.edit.area.Value()
	}

	rec, ok := m.store.Edited().Get(m.edit.id)
	if !ok {
		// The row is gone; the store reports it.
		m.mode = tableModeNormal
		cmd := m.setError(m.store.ApplyEdit(m.edit.id, record.Patch{}))
		return m, cmd
	}

	rc := m.rowContext(record.Entry{ID: m.edit.id, Record: rec})
	if err := rc.Commit(m.edit.field, input); err != nil {
		m.edit.err = err
		return m, nil
	}

	id, field := m.edit.id, m.edit.field
	m.mode = tableModeNormal
	m.edit = editState{}
	m.afterEdit(id)
	cmd := m.setStatus(fmt.Sprintf("Saved %s.%s", id, field))
	return m, cmd
}

// afterEdit refreshes what depends on the edited set. The store resets
// its window on every edit, so the cursor returns to the first row.
func (m *tableModel) afterEdit(id record.ID) {
	if rec, ok := m.store.Edited().Get(id); ok {
		m.widen(rec)
	}
	m.refreshChanges()
	m.cursor = 0
	m.scrollY = 0
}

func (m tableModel) modalWidth() int {
	return max(20, min(80, m.width-8))
}

// ═══════════════════════════════════════════════════════════════════════════
// Row / Column Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) getColDisplayWidth(colIdx int) int {
	if colIdx >= len(m.colStates) {
		return defaultColWidth
	}

	w := max(m.fullColWidths[colIdx], runewidth.StringWidth(m.headerText(colIdx)))
	switch m.colStates[colIdx] {
	case colStateExpanded:
		return max(w, minColWidth)
	case colStateHidden:
		return hiddenColWidth
	default:
		return max(min(w, defaultColWidth), minColWidth)
	}
}

func (m tableModel) getColStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.columns); i++ {
		x += m.getColDisplayWidth(i) + 2 // +2 for column separator spacing
	}
	return x
}

func (m tableModel) getColEndX(colIdx int) int {
	return m.getColStartX(colIdx) + m.getColDisplayWidth(colIdx)
}

func (m tableModel) getTotalWidth() int {
	total := 0
	for i := range m.columns {
		total += m.getColDisplayWidth(i) + 2
	}
	return total
}

// viewportWidth leaves room for the scrollbar.
func (m tableModel) viewportWidth() int {
	return max(m.width-2, 1)
}

func (m tableModel) getMaxScrollX() int {
	return max(m.getTotalWidth()-m.viewportWidth(), 0)
}

func (m tableModel) getMaxScrollY() int {
	return max(m.store.Len()-m.visibleRowCount(), 0)
}

func (m tableModel) visibleRowCount() int {
	count := max(m.height-chromeLines, 1)
	if m.opts.VisibleRows > 0 {
		count = min(count, m.opts.VisibleRows)
	}
	return count
}

// ═══════════════════════════════════════════════════════════════════════════
// Scroll Helpers
// ═══════════════════════════════════════════════════════════════════════════

// syncWindow clamps the vertical scroll and hands it to the store.
func (m *tableModel) syncWindow() {
	m.scrollY = max(min(m.scrollY, m.getMaxScrollY()), 0)
	m.store.Scroll(m.scrollY * m.opts.RowHeight)
}

func (m *tableModel) scrollRows(delta int) {
	m.scrollY = max(min(m.scrollY+delta, m.getMaxScrollY()), 0)
	visibleRows := m.visibleRowCount()
	if m.cursor < m.scrollY {
		m.cursor = m.scrollY
	} else if m.cursor >= m.scrollY+visibleRows {
		m.cursor = m.scrollY + visibleRows - 1
	}
}

func (m *tableModel) ensureRowVisible() {
	visibleRows := max(m.visibleRowCount(), 1)
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	} else if m.cursor >= m.scrollY+visibleRows {
		m.scrollY = m.cursor - visibleRows + 1
	}
}

func (m *tableModel) ensureColVisible() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	colWidth := colEndX - colStartX
	viewportWidth := m.viewportWidth()

	if colStartX < m.scrollX {
		m.scrollX = colStartX
	} else if colEndX > m.scrollX+viewportWidth {
		if colWidth <= viewportWidth {
			m.scrollX = colEndX - viewportWidth
		} else {
			m.scrollX = colStartX
		}
	}
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromLeft() {
	m.scrollX = m.getColStartX(m.colCursor)
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromRight() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	viewportWidth := m.viewportWidth()

	m.scrollX = colEndX - viewportWidth
	if colEndX-colStartX <= viewportWidth && m.scrollX < colStartX {
		m.scrollX = colStartX
	}
	m.clampScrollX()
}

func (m *tableModel) clampScrollX() {
	m.scrollX = max(min(m.scrollX, m.getMaxScrollX()), 0)
}

// ═══════════════════════════════════════════════════════════════════════════
// Animation
// ═══════════════════════════════════════════════════════════════════════════

type animTickMsg time.Time

const animationFrameInterval = 16 * time.Millisecond
const animationFraction = 0.25
const animationSnapThreshold = 1

func animTick() tea.Cmd {
	return tea.Tick(animationFrameInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func (m *tableModel) startAnimation(targetX, targetY int) tea.Cmd {
	targetX = max(min(targetX, m.getMaxScrollX()), 0)
	targetY = max(min(targetY, m.getMaxScrollY()), 0)

	m.animTargetX = targetX
	m.animTargetY = targetY

	if targetX == m.scrollX && targetY == m.scrollY {
		m.animating = false
		return nil
	}

	// No animation in accessible mode
	if styles.IsAccessible() {
		m.scrollX, m.scrollY = targetX, targetY
		m.animating = false
		return nil
	}

	if !m.animating {
		m.animating = true
		return animTick()
	}
	return nil
}

func (m *tableModel) updateAnimation() tea.Cmd {
	if !m.animating {
		return nil
	}

	remainingX := m.animTargetX - m.scrollX
	remainingY := m.animTargetY - m.scrollY

	if abs(remainingX) <= animationSnapThreshold && abs(remainingY) <= animationSnapThreshold {
		m.scrollX = m.animTargetX
		m.scrollY = m.animTargetY
		m.animating = false
		return nil
	}

	m.scrollX += animStep(remainingX)
	m.scrollY += animStep(remainingY)
	return animTick()
}

func animStep(remaining int) int {
	if remaining == 0 {
		return 0
	}
	delta := int(float64(remaining) * animationFraction)
	if delta == 0 {
		if remaining > 0 {
			return 1
		}
		return -1
	}
	return delta
}

func (m *tableModel) cancelAnimation() {
	m.animating = false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// setStatus sets a temporary status message that auto-clears.
func (m *tableModel) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = false
	m.statusUntil = m.opts.Clock.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m *tableModel) setError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.logger.Debug("table action failed", "error", err)
	cmd := m.setStatus(errorText(err))
	m.statusErr = true
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank)
// ═══════════════════════════════════════════════════════════════════════════

// cellTexts renders a row the way it appears in the table.
func (m tableModel) cellTexts(e record.Entry) []string {
	cells := m.rowContext(e).Cells()
	texts := make([]string, len(cells))
	for i, c := range cells {
		if c.Kind == editor.KindNone {
			texts[i] = CellText(c.Value)
		} else {
			texts[i] = flatten(c.Text)
		}
	}
	return texts
}

// yankCell copies the selected cell value to the system clipboard.
func (m *tableModel) yankCell() tea.Cmd {
	entry, ok := m.store.At(m.cursor)
	if !ok || m.colCursor >= len(m.columns) {
		return nil
	}
	val := CellText(entry.Record.Get(m.columns[m.colCursor]))
	if err := clipboard.WriteAll(val); err != nil {
		return m.setError(fmt.Errorf("clipboard error: %w", err))
	}
	return m.setStatus(fmt.Sprintf("Copied: %s", Truncate(val, 40)))
}

// yankRow copies the entire selected row (tab-separated) to the clipboard.
func (m *tableModel) yankRow() tea.Cmd {
	entry, ok := m.store.At(m.cursor)
	if !ok {
		return nil
	}
	row := Rows(m.columns, []record.Entry{entry})[0]
	if err := clipboard.WriteAll(strings.Join(row, "\t")); err != nil {
		return m.setError(fmt.Errorf("clipboard error: %w", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(row)))
}

// ═══════════════════════════════════════════════════════════════════════════
// ANSI-aware Viewport Slicing
// ═══════════════════════════════════════════════════════════════════════════

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes and wide characters. It returns the portion of the string from
// display column startX with the given width.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	if startX < 0 {
		startX = 0
	}

	var result strings.Builder
	result.Grow(width + 64)

	visualPos := 0
	outputCells := 0
	stylesApplied := false
	inEscape := false
	escapeSeq := strings.Builder{}

	var activeStyles []string

	runes := []rune(s)
	i := 0

	for i < len(runes) && outputCells < width {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			inEscape = true
			escapeSeq.Reset()
			escapeSeq.WriteRune(r)
			i++
			continue
		}

		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				seq := escapeSeq.String()

				if r == 'm' {
					if seq == "\x1b[0m" || seq == "\x1b[m" {
						activeStyles = nil
					} else {
						activeStyles = append(activeStyles, seq)
					}
				}

				if visualPos >= startX {
					result.WriteString(seq)
				}
			}
			i++
			continue
		}

		rw := runewidth.RuneWidth(r)
		if visualPos >= startX {
			// A wide rune that does not fit is replaced by padding.
			if outputCells+rw > width {
				break
			}
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputCells += rw
		} else if visualPos+rw > startX {
			// Left half of a wide rune cut by the viewport edge
			result.WriteString(strings.Repeat(" ", visualPos+rw-startX))
			outputCells += visualPos + rw - startX
		}

		visualPos += rw
		i++
	}

	if len(activeStyles) > 0 && outputCells > 0 {
		result.WriteString("\x1b[0m")
	}

	if outputCells < width {
		result.WriteString(strings.Repeat(" ", width-outputCells))
	}

	return result.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	vm := m.store.View()

	switch m.mode {
	case tableModeEdit:
		return m.renderTitle(vm) + "\n" + m.renderEditModal()
	case tableModeChanges:
		return m.renderTitle(vm) + "\n" + m.renderChanges()
	}

	var sb strings.Builder
	sb.WriteString(m.renderTitle(vm))
	sb.WriteString("\n")
	sb.WriteString(m.renderBar(vm))
	sb.WriteString("\n")

	switch vm.Status {
	case view.StatusLoading:
		sb.WriteString(styles.MutedMsg(view.StatusLoading.String()))
		sb.WriteString("\n")
	case view.StatusEmpty:
		// nothing loaded, nothing to draw
	default:
		sb.WriteString(m.renderTable(vm))
	}

	// Footer
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())

	return sb.String()
}

func (m tableModel) renderTitle(vm view.RenderModel) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	var title string
	if !vm.Filter.IsEmpty() {
		title = fmt.Sprintf("%s: %d/%d rows, %d columns", m.opts.Title, vm.Total, vm.Loaded, len(vm.Columns))
	} else {
		title = fmt.Sprintf("%s: %d rows, %d columns", m.opts.Title, vm.Total, len(vm.Columns))
	}
	out := styles.Render(headerStyle, title)

	if n := len(m.changes); n > 0 {
		out += "  " + styles.Render(styles.EditedStyle, fmt.Sprintf("%s %d edited", styles.SymbolEdited, n))
	}

	// State indicators for widened and hidden columns
	var stateInfo []string
	for i, state := range m.colStates {
		if state == colStateExpanded {
			stateInfo = append(stateInfo, fmt.Sprintf("%s+", m.columns[i]))
		} else if state == colStateHidden {
			stateInfo = append(stateInfo, fmt.Sprintf("%s-", m.columns[i]))
		}
	}
	if len(stateInfo) > 0 {
		out += styles.MutedMsg(fmt.Sprintf("  [%s]", strings.Join(stateInfo, ", ")))
	}
	return out
}

func (m tableModel) renderBar(vm view.RenderModel) string {
	if m.mode == tableModeFilter {
		prompt := styles.Render(styles.FilterStyle, fmt.Sprintf("/%s: ", m.filterField))
		return prompt + m.filterInput.View()
	}
	active := vm.Filter.Active()
	if len(active) == 0 {
		return ""
	}
	parts := make([]string, len(active))
	for i, field := range active {
		parts[i] = fmt.Sprintf("%s~%q", field, vm.Filter[field])
	}
	return styles.MutedMsg("filter: " + strings.Join(parts, "  "))
}

func (m tableModel) renderFooter() string {
	if m.statusMsg != "" && m.opts.Clock.Now().Before(m.statusUntil) {
		if m.statusErr {
			return styles.ErrorMsg(m.statusMsg)
		}
		return styles.SuccessMsg(m.statusMsg)
	}
	switch m.mode {
	case tableModeFilter:
		return styles.MutedMsg(fmt.Sprintf("type to filter (applies after %s)  enter apply  esc close", m.debouncer.Delay()))
	case tableModeEdit:
		if m.edit.kind.Multiline() {
			return styles.MutedMsg("ctrl+s save  esc close")
		}
		return styles.MutedMsg("enter save  esc close")
	case tableModeChanges:
		return styles.MutedMsg("c/esc close")
	}
	return styles.MutedMsg("↑↓←→ nav  ⇧+arrow scroll  / filter  x/X clear  s sort  enter edit  c changes  w widen  H hide  y copy  J json  R raw  P table  q quit")
}

// ═══════════════════════════════════════════════════════════════════════════
// Render Table
// ═══════════════════════════════════════════════════════════════════════════

// headerText is the plain header label: name, sort indicator and filter.
func (m tableModel) headerText(colIdx int) string {
	name := m.columns[colIdx]
	label := name
	if ind := m.store.Sort().Indicator(name); ind != "" {
		label += " " + ind
	}
	if text := m.store.Filter()[name]; text != "" {
		label += " /" + text
	}
	return label
}

func (m tableModel) renderTable(vm view.RenderModel) string {
	var sb strings.Builder

	if len(m.columns) == 0 {
		return "No columns\n"
	}

	viewportWidth := m.viewportWidth()

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Info)
	activeHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorSort)
	selectedHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	separatorStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	selectedSepStyle := lipgloss.NewStyle().Foreground(styles.Accent)

	sb.WriteString(applyViewport(m.buildFullHeaderLine(headerStyle, activeHeaderStyle, selectedHeaderStyle), m.scrollX, viewportWidth))
	sb.WriteString("\n")
	sb.WriteString(applyViewport(m.buildFullSeparatorLine(separatorStyle, selectedSepStyle), m.scrollX, viewportWidth))
	sb.WriteString("\n")

	if vm.Status == view.StatusNoData {
		sb.WriteString(styles.MutedMsg(view.StatusNoData.String()))
		sb.WriteString("\n")
		return sb.String()
	}

	visibleRows := m.visibleRowCount()
	rows := vm.Rows[:min(len(vm.Rows), visibleRows)]

	h := m.opts.RowHeight
	bar := scrollbar(len(rows), vm.TopSpacer, len(rows)*h, vm.BottomSpacer+(len(vm.Rows)-len(rows))*h)

	for i, entry := range rows {
		idx := vm.First + i
		rowLine := m.buildFullRowLine(entry, idx == m.cursor)
		sb.WriteString(applyViewport(rowLine, m.scrollX, viewportWidth))
		sb.WriteString(" ")
		sb.WriteString(bar[i])
		sb.WriteString("\n")
	}

	// Scroll indicators
	var indicators []string
	if m.scrollX > 0 {
		indicators = append(indicators, "◀")
	}
	if m.scrollX+viewportWidth < m.getTotalWidth() {
		indicators = append(indicators, "▶")
	}
	if vm.TopSpacer > 0 {
		indicators = append(indicators, "▲")
	}
	if vm.First+len(rows) < vm.Total {
		indicators = append(indicators, "▼")
	}
	if len(indicators) > 0 {
		sb.WriteString(styles.MutedMsg(strings.Join(indicators, " ")))
	}

	return sb.String()
}

func (m tableModel) buildFullHeaderLine(normalStyle, activeStyle, selectedStyle lipgloss.Style) string {
	var sb strings.Builder
	sortSpec, filterSpec := m.store.Sort(), m.store.Filter()

	for i, colName := range m.columns {
		colWidth := m.getColDisplayWidth(i)

		var displayName string
		if m.colStates[i] == colStateHidden {
			displayName = PadOrTruncate("...", colWidth)
		} else {
			displayName = PadOrTruncate(m.headerText(i), colWidth)
		}

		switch {
		case i == m.colCursor:
			sb.WriteString(styles.Render(selectedStyle, displayName))
		case sortSpec.Indicator(colName) != "" || filterSpec[colName] != "":
			sb.WriteString(styles.Render(activeStyle, displayName))
		default:
			sb.WriteString(styles.Render(normalStyle, displayName))
		}
		sb.WriteString("  ")
	}

	return sb.String()
}

func (m tableModel) buildFullSeparatorLine(normalStyle, selectedStyle lipgloss.Style) string {
	var sb strings.Builder

	for i := range m.columns {
		sep := strings.Repeat("─", m.getColDisplayWidth(i))
		if i == m.colCursor {
			sb.WriteString(styles.Render(selectedStyle, sep))
		} else {
			sb.WriteString(styles.Render(normalStyle, sep))
		}
		sb.WriteString("  ")
	}

	return sb.String()
}

func (m tableModel) buildFullRowLine(entry record.Entry, isSelectedRow bool) string {
	var sb strings.Builder

	selectedRowStyle := lipgloss.NewStyle().Background(styles.BgHighlight)
	selectedCellStyle := lipgloss.NewStyle().Background(styles.Accent).Foreground(lipgloss.Color("#000000"))

	texts := m.cellTexts(entry)
	editedFields := m.edited[entry.ID]

	for i, colName := range m.columns {
		colWidth := m.getColDisplayWidth(i)

		var displayVal string
		if m.colStates[i] == colStateHidden {
			displayVal = PadOrTruncate("...", colWidth)
		} else {
			displayVal = PadOrTruncate(texts[i], colWidth)
		}

		isSelectedCol := i == m.colCursor
		switch {
		case isSelectedRow && isSelectedCol:
			sb.WriteString(styles.Render(selectedCellStyle, displayVal))
		case isSelectedRow:
			sb.WriteString(styles.Render(selectedRowStyle, displayVal))
		case editedFields[colName]:
			sb.WriteString(styles.Render(styles.EditedStyle, displayVal))
		case colName == record.IDField:
			sb.WriteString(styles.Render(styles.IDStyle, displayVal))
		default:
			sb.WriteString(displayVal)
		}
		sb.WriteString("  ")
	}

	return sb.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// Modals
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) renderEditModal() string {
	var body strings.Builder
	body.WriteString(styles.SectionHeader(fmt.Sprintf("%s.%s", m.edit.id, m.edit.field)))
	body.WriteString(" ")
	body.WriteString(styles.MutedMsg(m.edit.kind.String()))
	body.WriteString("\n\n")
	if m.edit.kind.Multiline() {
		body.WriteString(m.edit.area.View())
	} else {
		body.WriteString(m.edit.input.View())
	}
	if m.edit.err != nil {
		body.WriteString("\n\n")
		body.WriteString(styles.ErrorMsg(errorText(m.edit.err)))
	}
	body.WriteString("\n\n")
	body.WriteString(m.renderFooter())

	box := styles.ModalStyle.Render(body.String())
	return lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center, box)
}

func (m tableModel) renderChanges() string {
	var body strings.Builder
	body.WriteString(styles.SectionHeader(fmt.Sprintf("Changes (%d)", len(m.changes))))
	body.WriteString("\n\n")

	lines := strings.Split(strings.TrimSuffix(changes.Render(m.changes), "\n"), "\n")
	limit := max(m.height-8, 1)
	if len(lines) > limit {
		more := len(lines) - limit + 1
		lines = append(lines[:limit-1], styles.MutedMsg(fmt.Sprintf("... %d more", more)))
	}
	body.WriteString(strings.Join(lines, "\n"))
	body.WriteString("\n\n")
	body.WriteString(m.renderFooter())

	box := styles.ModalStyle.Render(body.String())
	return lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center, box)
}

// errorText is the title of a structured error with its message.
func errorText(err error) string {
	var se *util.SheetError
	if errors.As(err, &se) && se.Message != "" {
		return se.Title + ": " + se.Message
	}
	return err.Error()
}
