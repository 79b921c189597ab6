// Package tui renders the order dashboard in the terminal.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"orderwarden/internal/dashboard"
	"orderwarden/internal/model"
	"orderwarden/internal/viewmodel"
)

const tickInterval = 500 * time.Millisecond

type loadedMsg struct{ err error }

type actionDoneMsg struct {
	action string
	err    error
}

type tickMsg time.Time

type Model struct {
	ctx  context.Context
	dash *dashboard.Dashboard

	table     table.Model
	search    textinput.Model
	searching bool
	form      *addForm

	snap   dashboard.Snapshot
	styles Styles
	width  int
	height int

	loading   bool
	signedOut bool
	quitting  bool
}

func New(ctx context.Context, dash *dashboard.Dashboard) Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	si := textinput.New()
	si.Placeholder = "Search order ID, tracking number or carrier..."
	si.CharLimit = 64
	si.Width = 50
	si.Prompt = "/ "

	m := Model{
		ctx:     ctx,
		dash:    dash,
		table:   t,
		search:  si,
		styles:  DefaultStyles(),
		loading: true,
	}
	m.syncTable()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) load() tea.Cmd {
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: dash.Load(ctx)}
	}
}

// run executes a dashboard action off the UI loop.
func (m Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(msg.Width))
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		if errors.Is(msg.err, dashboard.ErrUnauthenticated) {
			m.signedOut = true
		}
		m.syncTable()
		return m, nil

	case actionDoneMsg:
		if errors.Is(msg.err, dashboard.ErrUnauthenticated) {
			m.signedOut = true
		}
		m.syncTable()
		return m, nil

	case tickMsg:
		m.syncTable()
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "r":
		m.dash.Update(func(vm *viewmodel.ViewModel) {
			vm.SetRiskFilter(cycle(riskOptions(), vm.RiskFilter()))
		})
	case "s":
		m.dash.Update(func(vm *viewmodel.ViewModel) {
			vm.SetStatusFilter(cycle(statusOptions(), vm.StatusFilter()))
		})
	case "d":
		m.dash.Update(func(vm *viewmodel.ViewModel) {
			vm.SetDateFilter(viewmodel.DateWindow(cycle(dateOptions(), string(vm.DateFilter()))))
		})
	case "o":
		m.dash.Update(func(vm *viewmodel.ViewModel) {
			field, _ := vm.Sort()
			vm.SetSort(viewmodel.SortField(cycle(sortOptions(), string(field))))
		})
	case "O":
		m.dash.Update(func(vm *viewmodel.ViewModel) {
			field, _ := vm.Sort()
			vm.SetSort(field)
		})
	case " ":
		if id, ok := m.cursorID(); ok {
			m.dash.Update(func(vm *viewmodel.ViewModel) { vm.Toggle(id) })
		}
	case "a":
		m.dash.Update(func(vm *viewmodel.ViewModel) { vm.ToggleAll() })
	case "c":
		if id, ok := m.cursorID(); ok && !m.dash.Busy(id) {
			dash := m.dash
			return m, m.run("check", func(ctx context.Context) error {
				_, err := dash.Check(ctx, id)
				return err
			})
		}
	case "x":
		if id, ok := m.cursorID(); ok && !m.dash.Busy(id) {
			dash := m.dash
			return m, m.run("delete", func(ctx context.Context) error {
				return dash.DeleteOne(ctx, id)
			})
		}
	case "X":
		if len(m.snap.Selected) > 0 {
			dash := m.dash
			return m, m.run("bulk-delete", func(ctx context.Context) error {
				_, err := dash.DeleteSelected(ctx)
				return err
			})
		}
	case "n":
		m.form = newAddForm()
		return m, textinput.Blink
	case "R":
		dash := m.dash
		return m, m.run("refresh", dash.Refresh)
	case "S":
		if !m.dash.Pending("sync") {
			dash := m.dash
			return m, m.run("sync", func(ctx context.Context) error {
				_, err := dash.SyncEtsy(ctx)
				return err
			})
		}
	case "E":
		dash := m.dash
		return m, m.run("connect", func(context.Context) error { return dash.ConnectEtsy() })
	case "esc":
		m.dash.Update(func(vm *viewmodel.ViewModel) { vm.ClearSelection() })
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	m.syncTable()
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.searching = false
		m.search.Blur()
	case "enter":
		m.searching = false
		m.search.Blur()
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		value := m.search.Value()
		m.dash.Update(func(vm *viewmodel.ViewModel) { vm.SetSearch(value) })
		m.syncTable()
		return m, cmd
	}

	value := m.search.Value()
	m.dash.Update(func(vm *viewmodel.ViewModel) { vm.SetSearch(value) })
	m.syncTable()
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		return m, m.form.next(1)
	case "shift+tab", "up":
		return m, m.form.next(-1)
	case "enter":
		in := m.form.value()
		m.form = nil
		dash := m.dash
		return m, m.run("create", func(ctx context.Context) error {
			_, err := dash.CreateOrder(ctx, in)
			return err
		})
	}
	return m, m.form.update(msg)
}

func (m Model) cursorID() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snap.Visible) {
		return "", false
	}
	return m.snap.Visible[i].ID, true
}

// syncTable re-reads the dashboard and rebuilds the rows.
func (m *Model) syncTable() {
	m.snap = m.dash.Snapshot()
	selected := make(map[string]bool, len(m.snap.Selected))
	for _, id := range m.snap.Selected {
		selected[id] = true
	}

	rows := make([]table.Row, 0, len(m.snap.Visible))
	for _, o := range m.snap.Visible {
		rows = append(rows, row(o, selected[o.ID], m.snap.Busy[o.ID], m.snap.Deleting[o.ID]))
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func row(o model.Order, selected, busy, deleting bool) table.Row {
	mark := "[ ]"
	if selected {
		mark = "[x]"
	}
	carrier := o.Carrier
	if carrier == "" {
		carrier = "auto"
	}
	status := o.LastStatus.Label()
	switch {
	case deleting:
		status = "deleting..."
	case busy:
		status = "checking..."
	}
	updated := "never"
	if o.LastUpdateAt != nil {
		updated = o.LastUpdateAt.Local().Format("2006-01-02 15:04")
	}
	return table.Row{
		mark,
		o.OrderID,
		o.TrackingNumber,
		carrier,
		status,
		o.RiskLevel.Label(),
		updated,
		o.CreatedAt.Local().Format("2006-01-02"),
	}
}

func columns(width int) []table.Column {
	tracking := 22
	if width > 120 {
		tracking = 28
	}
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "Order", Width: 14},
		{Title: "Tracking", Width: tracking},
		{Title: "Carrier", Width: 8},
		{Title: "Status", Width: 16},
		{Title: "Risk", Width: 15},
		{Title: "Last update", Width: 16},
		{Title: "Created", Width: 10},
	}
}

func riskOptions() []string {
	opts := []string{viewmodel.FilterAll}
	for _, r := range model.RiskLevels {
		opts = append(opts, string(r))
	}
	return opts
}

func statusOptions() []string {
	opts := []string{viewmodel.FilterAll}
	for _, s := range model.Statuses {
		opts = append(opts, string(s))
	}
	return opts
}

func dateOptions() []string {
	opts := make([]string, len(viewmodel.DateWindows))
	for i, w := range viewmodel.DateWindows {
		opts[i] = string(w)
	}
	return opts
}

func sortOptions() []string {
	opts := make([]string, len(viewmodel.SortFields))
	for i, f := range viewmodel.SortFields {
		opts[i] = string(f)
	}
	return opts
}

// cycle returns the option after current, wrapping around.
func cycle(opts []string, current string) string {
	for i, o := range opts {
		if o == current {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}
