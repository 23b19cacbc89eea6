// Package types holds the plain data shapes shared across the crawler:
// tasks, documents, and the typed error kinds the fetch, parse and
// store stages return.
package types

import "time"

// TaskState is the lifecycle state of a Task.
type TaskState string

const (
	TaskQueued   TaskState = "queued"
	TaskFetching TaskState = "fetching"
	TaskDone     TaskState = "done"
	TaskError    TaskState = "error"
)

// Task is uniquely identified by (Source, URLNorm).
type Task struct {
	Source       string         `bson:"source"`
	URLNorm      string         `bson:"url_norm"`
	State        TaskState      `bson:"state"`
	Priority     int            `bson:"priority"`
	NextFetchAt  time.Time      `bson:"next_fetch_at"`
	LockedUntil  time.Time      `bson:"locked_until"`
	LockedBy     string         `bson:"locked_by"`
	Retries      int            `bson:"retries"`
	LastError    string         `bson:"last_error"`
	Meta         map[string]any `bson:"meta"`
	CreatedAt    time.Time      `bson:"created_at"`
	StartedAt    time.Time      `bson:"started_at,omitempty"`
	FinishedAt   time.Time      `bson:"finished_at,omitempty"`
	Note         string         `bson:"note"`
}

// MetaString returns a string-typed meta value, or "" if absent/wrong type.
func (t *Task) MetaString(key string) string {
	if t.Meta == nil {
		return ""
	}
	v, ok := t.Meta[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
