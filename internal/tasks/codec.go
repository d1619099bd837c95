package tasks

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the persisted shape of a task.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func ToRecords(list []Task) []Record {
	out := make([]Record, len(list))
	for i, t := range list {
		out[i] = Record{ID: t.ID, Text: t.Text, Completed: t.Completed, CreatedAt: t.CreatedAt}
	}
	return out
}

// Encode serializes the whole collection, preserving order.
func Encode(list []Task) ([]byte, error) {
	return json.Marshal(ToRecords(list))
}

// Decode parses a blob written by Encode. Records without an id or text are
// rejected along with the whole blob.
func Decode(data []byte) ([]Task, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
		if _, err := normalizeText(r.Text); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, Task{ID: r.ID, Text: r.Text, Completed: r.Completed, CreatedAt: r.CreatedAt})
	}
	return out, nil
}
