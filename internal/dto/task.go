package dto

// TaskRequest is the JSON body for creating or replacing a task.
type TaskRequest struct {
	Title       string `json:"title" example:"Write report"`
	Description string `json:"description" example:"Q3 numbers"`
}

type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DeleteTaskResponse struct {
	Message   string `json:"message"`
	DeletedID string `json:"deleted_id"`
}
