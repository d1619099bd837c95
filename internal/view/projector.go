package view

import (
	"fmt"
	"strings"
	"time"

	"tasklist/internal/tasks"
)

// Item is one task as it appears in a rendered list.
type Item struct {
	Task      tasks.Task
	DateLabel string
}

// Projection is the read-only, filtered view of the collection at one moment.
// Counts always describe the whole collection, not just Items.
type Projection struct {
	Filter tasks.Filter
	Items  []Item
	Counts tasks.Counts
	Empty  bool
}

// Project derives the view of all for filter f. all must already be in
// display order; it is not modified.
func Project(all []tasks.Task, f tasks.Filter, now time.Time) Projection {
	p := Projection{
		Filter: f,
		Counts: tasks.CountOf(all),
	}
	for _, t := range all {
		if !f.Match(t) {
			continue
		}
		p.Items = append(p.Items, Item{Task: t, DateLabel: RelativeDate(t.CreatedAt, now)})
	}
	p.Empty = len(p.Items) == 0
	return p
}

// EmptyMessage is shown in place of the list when nothing matches the filter.
func (p Projection) EmptyMessage() string {
	switch {
	case p.Counts.Total == 0:
		return "No tasks yet. Add one to get started."
	case p.Filter == tasks.FilterCompleted:
		return "No completed tasks."
	case p.Filter == tasks.FilterPending:
		return "Nothing pending. All done!"
	default:
		return "No tasks."
	}
}

const absoluteDateLayout = "Jan 2, 2006"

// RelativeDate buckets t relative to now by calendar day in now's location:
// today, yesterday, 2 to 7 days ago, then the absolute date.
func RelativeDate(t, now time.Time) string {
	days := calendarDays(t.In(now.Location()), now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.In(now.Location()).Format(absoluteDateLayout)
	}
}

func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// ShortID trims an id for display; ids shorter than n are returned whole.
func ShortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// Render draws p as plain text.
func Render(p Projection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total %d | Completed %d | Pending %d\n", p.Counts.Total, p.Counts.Completed, p.Counts.Pending)
	fmt.Fprintf(&b, "Filter: %s\n\n", p.Filter)
	if p.Empty {
		b.WriteString(p.EmptyMessage())
		b.WriteString("\n")
		return b.String()
	}
	for _, it := range p.Items {
		fmt.Fprintf(&b, "%-8s %s %s (%s)\n", ShortID(it.Task.ID, 8), Checkbox(it.Task.Completed), it.Task.Text, it.DateLabel)
	}
	return b.String()
}
