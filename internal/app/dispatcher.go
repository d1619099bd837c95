package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tasklist/internal/notify"
	"tasklist/internal/tasks"
	"tasklist/internal/view"
)

type Kind int

const (
	KindAdd Kind = iota
	KindToggle
	KindEdit
	KindDelete
	KindClearCompleted
	KindSetFilter
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindToggle:
		return "toggle"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	case KindClearCompleted:
		return "clear_completed"
	case KindSetFilter:
		return "set_filter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is one user intent. Only the fields relevant to Kind are read.
// Confirmed marks a destructive command the user has already approved.
type Command struct {
	Kind      Kind
	ID        string
	Text      string
	Filter    tasks.Filter
	Confirmed bool
}

func Add(text string) Command { return Command{Kind: KindAdd, Text: text} }
func Toggle(id string) Command { return Command{Kind: KindToggle, ID: id} }
func Edit(id, text string) Command { return Command{Kind: KindEdit, ID: id, Text: text} }
func Delete(id string) Command { return Command{Kind: KindDelete, ID: id} }
func ClearCompleted() Command { return Command{Kind: KindClearCompleted} }
func SetFilter(f tasks.Filter) Command { return Command{Kind: KindSetFilter, Filter: f} }

func (c Command) Confirm() Command {
	c.Confirmed = true
	return c
}

type Notice struct {
	Severity notify.Severity
	Message  string
}

// Outcome is what the presentation layer needs after a command: an optional
// notice, an optional confirmation prompt, and the fresh projection.
type Outcome struct {
	Notice     *Notice
	Confirm    string
	Projection view.Projection
}

func (o Outcome) NeedsConfirm() bool { return o.Confirm != "" }

// Dispatcher routes commands to the task store and re-projects afterwards.
type Dispatcher struct {
	store  *tasks.Store
	filter tasks.Filter
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func New(store *tasks.Store, filter tasks.Filter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		filter: filter,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Filter() tasks.Filter { return d.filter }

func (d *Dispatcher) Store() *tasks.Store { return d.store }

func (d *Dispatcher) Projection() view.Projection {
	return view.Project(d.store.List(tasks.FilterAll), d.filter, d.now())
}

func (d *Dispatcher) Dispatch(cmd Command) Outcome {
	d.logger.Debug("dispatch", "kind", cmd.Kind, "id", cmd.ID, "confirmed", cmd.Confirmed)
	var out Outcome
	switch cmd.Kind {
	case KindAdd:
		_, err := d.store.Add(cmd.Text)
		out.Notice = d.result(err, "Task added")
	case KindToggle:
		t, err := d.store.Toggle(cmd.ID)
		msg := "Task marked pending"
		if t.Completed {
			msg = "Task completed"
		}
		out.Notice = d.result(err, msg)
	case KindEdit:
		_, err := d.store.Edit(cmd.ID, cmd.Text)
		out.Notice = d.result(err, "Task updated")
	case KindDelete:
		t, ok := d.store.Get(cmd.ID)
		if !ok {
			d.logger.Debug("delete ignored, task not found", "id", cmd.ID)
			break
		}
		if !cmd.Confirmed {
			out.Confirm = fmt.Sprintf("Delete %q?", t.Text)
			break
		}
		out.Notice = d.result(d.store.Delete(cmd.ID), "Task deleted")
	case KindClearCompleted:
		n := d.store.CompletedCount()
		if n == 0 {
			out.Notice = &Notice{Severity: notify.Info, Message: "No completed tasks to clear"}
			break
		}
		if !cmd.Confirmed {
			out.Confirm = fmt.Sprintf("Delete %d completed %s?", n, plural(n, "task", "tasks"))
			break
		}
		removed, err := d.store.ClearCompleted()
		out.Notice = d.result(err, fmt.Sprintf("Cleared %d completed %s", removed, plural(removed, "task", "tasks")))
	case KindSetFilter:
		d.filter = cmd.Filter
	default:
		out.Notice = &Notice{Severity: notify.Warning, Message: fmt.Sprintf("Unknown command %s", cmd.Kind)}
	}
	out.Projection = d.Projection()
	return out
}

// result maps a store error to the notice the user sees. A missing task is
// not reported; the list it came from is simply redrawn.
func (d *Dispatcher) result(err error, success string) *Notice {
	switch {
	case err == nil:
		return &Notice{Severity: notify.Success, Message: success}
	case errors.Is(err, tasks.ErrEmptyInput):
		return &Notice{Severity: notify.Error, Message: "Please enter task text"}
	case errors.Is(err, tasks.ErrNotFound):
		d.logger.Debug("command ignored, task not found")
		return nil
	default:
		d.logger.Error("command failed", "error", err)
		return &Notice{Severity: notify.Error, Message: fmt.Sprintf("Save failed: %v", err)}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
