package domain

// Task is a tracked work item. ID is assigned on create and never changes.
// The JSON tags are the persisted shape, shared by every storage backend.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
