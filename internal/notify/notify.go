package notify

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) Color() lipgloss.Color {
	switch s {
	case Success:
		return lipgloss.Color("#27ae60")
	case Warning:
		return lipgloss.Color("#f39c12")
	case Error:
		return lipgloss.Color("#e74c3c")
	default:
		return lipgloss.Color("#3498db")
	}
}

func (s Severity) Icon() string {
	switch s {
	case Success:
		return "✔"
	case Warning:
		return "⚠"
	case Error:
		return "✖"
	default:
		return "ℹ"
	}
}

type Notification struct {
	ID       int
	Severity Severity
	Message  string
}

// DismissMsg is delivered once a notification's display time is up.
type DismissMsg struct {
	ID int
}

// Queue holds the notifications currently on screen, oldest first.
// Duplicates are kept.
type Queue struct {
	ttl    time.Duration
	nextID int
	items  []Notification
}

func NewQueue(ttl time.Duration) *Queue {
	return &Queue{ttl: ttl}
}

// Push shows a notification and returns the command that dismisses it later.
func (q *Queue) Push(sev Severity, msg string) (Notification, tea.Cmd) {
	q.nextID++
	n := Notification{ID: q.nextID, Severity: sev, Message: msg}
	q.items = append(q.items, n)
	id := n.ID
	return n, tea.Tick(q.ttl, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}

// Dismiss removes the notification with id. Unknown ids are ignored.
func (q *Queue) Dismiss(id int) {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *Queue) Active() []Notification {
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int { return len(q.items) }

var boxStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ffffff")).
	Bold(true).
	Padding(0, 1)

// Render draws the stack, one notification per line.
func (q *Queue) Render() string {
	if len(q.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(q.items))
	for _, n := range q.items {
		lines = append(lines, boxStyle.Background(n.Severity.Color()).Render(n.Severity.Icon()+" "+n.Message))
	}
	return strings.Join(lines, "\n")
}
