package models

type AssignmentCreatedEvent struct {
	AssignmentID string `json:"assignment_id"`
	OwnerID      string `json:"owner_id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	DueAt        string `json:"due_at"`
	Timestamp    int64  `json:"timestamp"`
}
