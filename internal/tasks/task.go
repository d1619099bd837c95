package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyInput is returned when task text is blank after trimming.
	ErrEmptyInput = errors.New("task text is empty")
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
)

type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
}

type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterPending
)

func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterPending:
		return "pending"
	default:
		return "all"
	}
}

// Match reports whether t belongs in the view selected by f.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending", "todo":
		return FilterPending, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q", s)
	}
}

type Counts struct {
	Total     int
	Completed int
	Pending   int
}

func CountOf(list []Task) Counts {
	var c Counts
	for _, t := range list {
		c.Total++
		if t.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

func normalizeText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}
