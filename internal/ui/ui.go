package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/app"
	"tasklist/internal/config"
	"tasklist/internal/notify"
	"tasklist/internal/tasks"
	"tasklist/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirm
)

const (
	pulseDuration = 200 * time.Millisecond
	minInputWidth = 20
)

// pulseDoneMsg ends the count highlight started by the pulse with the same seq.
type pulseDoneMsg struct {
	seq int
}

type Model struct {
	dispatch  *app.Dispatcher
	cfg       config.Config
	proj      view.Projection
	cursor    int
	mode      mode
	input     textinput.Model
	editingID string
	seeded    string
	pending   *app.Command
	prompt    string
	notes     *notify.Queue
	pulseSeq  int
	pulsing   bool
	welcome   bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea"))
	countStyle  = lipgloss.NewStyle().Bold(true)
	pulseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea"))
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab = lipgloss.NewStyle().Faint(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dateStyle   = lipgloss.NewStyle().Faint(true)
	emptyStyle  = lipgloss.NewStyle().Italic(true).Faint(true)
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f39c12"))
)

func New(d *app.Dispatcher, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 0
	ti.Width = 40

	return Model{
		dispatch: d,
		cfg:      cfg,
		proj:     d.Projection(),
		input:    ti,
		mode:     modeList,
		notes:    notify.NewQueue(cfg.NotifyDuration()),
	}
}

func Run(d *app.Dispatcher, cfg config.Config, firstLaunch bool) error {
	m := New(d, cfg)
	m.welcome = firstLaunch
	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if !m.welcome {
		return nil
	}
	_, cmd := m.notes.Push(notify.Info, fmt.Sprintf("Welcome! Press %s to add a task.", m.cfg.Keys.Add))
	return cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case notify.DismissMsg:
		m.notes.Dismiss(msg.ID)
	case pulseDoneMsg:
		if msg.seq == m.pulseSeq {
			m.pulsing = false
		}
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, minInputWidth)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeEdit:
		return m.updateEditMode(key, msg)
	case modeConfirm:
		return m.updateConfirm(key)
	default:
		return m.updateListMode(key)
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case m.cfg.Keys.Confirm:
		out := m.dispatch.Dispatch(app.Add(m.input.Value()))
		if out.Notice != nil && out.Notice.Severity == notify.Error {
			// keep the input open so the user can fix it
			return m.apply(out)
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.cursor = 0
		return m.apply(out)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		return m.closeEdit(), nil
	case m.cfg.Keys.Confirm:
		// the input is single line; saving untouched text would flatten tabs and newlines
		if m.input.Value() == m.seeded {
			return m.closeEdit(), nil
		}
		out := m.dispatch.Dispatch(app.Edit(m.editingID, m.input.Value()))
		if out.Notice != nil && out.Notice.Severity == notify.Error {
			return m.apply(out)
		}
		return m.closeEdit().apply(out)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) closeEdit() Model {
	m.mode = modeList
	m.editingID = ""
	m.seeded = ""
	m.input.SetValue("")
	m.input.Placeholder = "What needs to be done?"
	m.input.Blur()
	return m
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	items := m.proj.Items
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(items))
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(items))
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		return m, m.input.Focus()
	case m.cfg.Keys.Toggle:
		if t, ok := m.selected(); ok {
			return m.run(app.Toggle(t.ID))
		}
	case m.cfg.Keys.Delete:
		if t, ok := m.selected(); ok {
			return m.run(app.Delete(t.ID))
		}
	case m.cfg.Keys.Edit:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editingID = t.ID
		m.input.SetValue(t.Text)
		m.seeded = m.input.Value()
		m.input.Placeholder = "Task text"
		m.input.CursorEnd()
		return m, m.input.Focus()
	case m.cfg.Keys.ClearCompleted:
		return m.run(app.ClearCompleted())
	case m.cfg.Keys.FilterAll:
		return m.run(app.SetFilter(tasks.FilterAll))
	case m.cfg.Keys.FilterCompleted:
		return m.run(app.SetFilter(tasks.FilterCompleted))
	case m.cfg.Keys.FilterPending:
		return m.run(app.SetFilter(tasks.FilterPending))
	}
	return m, nil
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		cmd := m.pending
		m.pending = nil
		m.prompt = ""
		m.mode = modeList
		if cmd == nil {
			return m, nil
		}
		return m.run(cmd.Confirm())
	case "n", "N", m.cfg.Keys.Cancel:
		m.pending = nil
		m.prompt = ""
		m.mode = modeList
		return m, nil
	default:
		return m, nil
	}
}

// run dispatches c and parks it when the user has to confirm it first.
func (m Model) run(c app.Command) (Model, tea.Cmd) {
	out := m.dispatch.Dispatch(c)
	if out.NeedsConfirm() {
		m.pending = &c
		m.prompt = out.Confirm
		m.mode = modeConfirm
	}
	return m.apply(out)
}

// apply folds a dispatch outcome into the model and schedules its timed effects.
func (m Model) apply(out app.Outcome) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if out.Projection.Counts != m.proj.Counts {
		m.pulseSeq++
		m.pulsing = true
		seq := m.pulseSeq
		cmds = append(cmds, tea.Tick(pulseDuration, func(time.Time) tea.Msg {
			return pulseDoneMsg{seq: seq}
		}))
	}
	m.proj = out.Projection
	m.cursor = clampCursor(m.cursor, len(m.proj.Items))
	if out.Notice != nil {
		_, cmd := m.notes.Push(out.Notice.Severity, out.Notice.Message)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) selected() (tasks.Task, bool) {
	if len(m.proj.Items) == 0 {
		return tasks.Task{}, false
	}
	return m.proj.Items[clampCursor(m.cursor, len(m.proj.Items))].Task, true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(m.renderCounts())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if m.proj.Empty {
		b.WriteString(emptyStyle.Render(m.proj.EmptyMessage()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\nAdd task: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeEdit:
		b.WriteString("\n")
		b.WriteString(modalStyle.Render("Edit task\n" + m.input.View() + "\nenter save • esc cancel"))
		b.WriteString("\n")
	case modeConfirm:
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(m.prompt + " y/n"))
		b.WriteString("\n")
	}

	if notes := m.notes.Render(); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderCounts() string {
	style := countStyle
	if m.pulsing {
		style = pulseStyle
	}
	c := m.proj.Counts
	return fmt.Sprintf("%s total • %s completed • %s pending",
		style.Render(fmt.Sprint(c.Total)),
		style.Render(fmt.Sprint(c.Completed)),
		style.Render(fmt.Sprint(c.Pending)))
}

func (m Model) renderFilters() string {
	keys := []string{m.cfg.Keys.FilterAll, m.cfg.Keys.FilterCompleted, m.cfg.Keys.FilterPending}
	parts := make([]string, 0, 3)
	for i, f := range []tasks.Filter{tasks.FilterAll, tasks.FilterCompleted, tasks.FilterPending} {
		label := fmt.Sprintf("%s:%s", keys[i], f)
		if f == m.proj.Filter {
			parts = append(parts, activeTab.Render(label))
		} else {
			parts = append(parts, inactiveTab.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, it := range m.proj.Items {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		text := it.Task.Text
		if it.Task.Completed {
			text = doneStyle.Render(text)
		}
		fmt.Fprintf(&b, "%s %s %s  %s\n", cursor, view.Checkbox(it.Task.Completed), text, dateStyle.Render(it.DateLabel))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit • %s delete • %s clear done • %s/%s/%s filter • %s quit",
		k.Up, k.Down, k.Add, keyName(k.Toggle), k.Edit, k.Delete, k.ClearCompleted, k.FilterAll, k.FilterCompleted, k.FilterPending, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
