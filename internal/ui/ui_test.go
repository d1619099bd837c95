package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/app"
	"tasklist/internal/config"
	"tasklist/internal/notify"
	"tasklist/internal/tasks"
)

type memSlot map[string][]byte

func (m memSlot) Get(key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSlot) Put(key string, value []byte) error {
	m[key] = value
	return nil
}

func testConfig() config.Config {
	return config.Config{
		NotifySeconds: 3,
		Keys: config.Keymap{
			Quit:            "q",
			Add:             "a",
			Up:              "k",
			Down:            "j",
			Toggle:          " ",
			Delete:          "d",
			Edit:            "e",
			Confirm:         "enter",
			Cancel:          "esc",
			FilterAll:       "1",
			FilterCompleted: "2",
			FilterPending:   "3",
			ClearCompleted:  "c",
		},
	}
}

func newModel(t *testing.T, texts ...string) Model {
	t.Helper()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	n := 0
	store := tasks.Open(memSlot{}, "tasks",
		tasks.WithClock(func() time.Time { return now }),
		tasks.WithIDFunc(func() string {
			n++
			return fmt.Sprintf("t%d", n)
		}),
	)
	for _, text := range texts {
		_, err := store.Add(text)
		require.NoError(t, err)
	}
	d := app.New(store, tasks.FilterAll, app.WithClock(func() time.Time { return now }))
	return New(d, testConfig())
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func texts(m Model) []string {
	out := make([]string, len(m.proj.Items))
	for i, it := range m.proj.Items {
		out[i] = it.Task.Text
	}
	return out
}

func TestAddFlow(t *testing.T) {
	m := newModel(t, "older")

	m = press(t, m, "a")
	assert.Equal(t, modeAdd, m.mode)
	m = press(t, m, "m", "i", "l", "k", "enter")

	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, []string{"milk", "older"}, texts(m))
	assert.Equal(t, 1, m.notes.Len())
	assert.True(t, m.pulsing)
}

func TestAddBlankKeepsInputOpen(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "a", " ", "enter")

	assert.Equal(t, modeAdd, m.mode)
	assert.True(t, m.proj.Empty)
	require.Equal(t, 1, m.notes.Len())
	assert.Equal(t, notify.Error, m.notes.Active()[0].Severity)
}

func TestToggleAndFilter(t *testing.T) {
	m := newModel(t, "b", "a")

	m = press(t, m, " ")
	assert.True(t, m.proj.Items[0].Task.Completed)

	m = press(t, m, "2")
	assert.Equal(t, tasks.FilterCompleted, m.proj.Filter)
	assert.Equal(t, []string{"a"}, texts(m))

	m = press(t, m, "3")
	assert.Equal(t, []string{"b"}, texts(m))

	m = press(t, m, "1")
	assert.Len(t, m.proj.Items, 2)
}

func TestDeleteConfirmation(t *testing.T) {
	m := newModel(t, "keep", "drop")

	m = press(t, m, "d")
	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.prompt, "drop")

	m = press(t, m, "n")
	assert.Equal(t, modeList, m.mode)
	assert.Len(t, m.proj.Items, 2)

	m = press(t, m, "d", "y")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, []string{"keep"}, texts(m))
}

func TestClearCompletedConfirmation(t *testing.T) {
	m := newModel(t, "one", "two", "three")

	m = press(t, m, "c")
	assert.Equal(t, modeList, m.mode, "nothing to clear needs no prompt")

	m = press(t, m, " ", "j", " ")
	assert.Equal(t, 2, m.proj.Counts.Completed)

	m = press(t, m, "c")
	require.Equal(t, modeConfirm, m.mode)
	m = press(t, m, "y")
	assert.Equal(t, []string{"one"}, texts(m))
}

func TestEditFlow(t *testing.T) {
	m := newModel(t, "draft")

	m = press(t, m, "e")
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "draft", m.input.Value())

	m = press(t, m, "!", "enter")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, []string{"draft!"}, texts(m))

	m = press(t, m, "e", "esc")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, []string{"draft!"}, texts(m))
}

func TestEditKeepsLongText(t *testing.T) {
	long := strings.Repeat("x", 300)
	m := newModel(t, long)

	m = press(t, m, "e")
	assert.Equal(t, long, m.input.Value())
	m = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)

	got, ok := m.dispatch.Store().Get("t1")
	require.True(t, ok)
	assert.Equal(t, long, got.Text)

	m = press(t, m, "e", "!", "enter")
	got, _ = m.dispatch.Store().Get("t1")
	assert.Equal(t, long+"!", got.Text)
}

func TestEditUntouchedKeepsWhitespace(t *testing.T) {
	m := newModel(t, "first\tsecond\nthird")

	m = press(t, m, "e", "enter")
	assert.Equal(t, modeList, m.mode)

	got, ok := m.dispatch.Store().Get("t1")
	require.True(t, ok)
	assert.Equal(t, "first\tsecond\nthird", got.Text)
	assert.Equal(t, 0, m.notes.Len())
}

func TestWindowSizeClampsInputWidth(t *testing.T) {
	m := newModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 4, Height: 10})
	assert.Equal(t, minInputWidth, next.(Model).input.Width)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	assert.Equal(t, 90, next.(Model).input.Width)
}

func TestDismissMsg(t *testing.T) {
	m := newModel(t, "x")
	m = press(t, m, " ")
	require.Equal(t, 1, m.notes.Len())

	id := m.notes.Active()[0].ID
	next, _ := m.Update(notify.DismissMsg{ID: id})
	m = next.(Model)
	assert.Equal(t, 0, m.notes.Len())
}

func TestPulseEndsOnLatestTick(t *testing.T) {
	m := newModel(t, "x")
	m = press(t, m, " ")
	require.True(t, m.pulsing)

	next, _ := m.Update(pulseDoneMsg{seq: m.pulseSeq - 1})
	m = next.(Model)
	assert.True(t, m.pulsing, "stale tick must not end the pulse")

	next, _ = m.Update(pulseDoneMsg{seq: m.pulseSeq})
	m = next.(Model)
	assert.False(t, m.pulsing)
}

func TestView(t *testing.T) {
	m := newModel(t)
	out := m.View()
	assert.Contains(t, out, "No tasks yet")
	assert.Contains(t, out, "total")

	m = newModel(t, "write report")
	assert.Contains(t, m.View(), "write report")
	assert.Contains(t, m.View(), "Today")
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestInitWelcome(t *testing.T) {
	m := newModel(t)
	assert.Nil(t, m.Init())

	m.welcome = true
	require.NotNil(t, m.Init())
	require.Equal(t, 1, m.notes.Len())
	assert.Contains(t, m.notes.Active()[0].Message, "Press a")
}
