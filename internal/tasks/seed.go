package tasks

import "time"

const day = 24 * time.Hour

// DemoTasks is the first-run sample collection, newest first.
func DemoTasks(now time.Time) []Task {
	now = now.UTC().Round(0)
	return []Task{
		{ID: "1", Text: "Learn advanced Go concurrency", CreatedAt: now},
		{ID: "2", Text: "Build a portfolio project", Completed: true, CreatedAt: now.Add(-day)},
		{ID: "3", Text: "Review terminal UI basics", CreatedAt: now.Add(-2 * day)},
	}
}

// SeedIfEmpty installs the demo tasks when the collection is empty and
// reports whether it did.
func (s *Store) SeedIfEmpty() (bool, error) {
	if len(s.tasks) > 0 {
		return false, nil
	}
	if err := s.commit(DemoTasks(s.now())); err != nil {
		return false, err
	}
	s.logger.Info("seeded demo tasks", "count", len(s.tasks))
	return true, nil
}
