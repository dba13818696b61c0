package tasks

import "time"

type Status string

const (
	StatusPending Status = "pendiente"
	StatusDone    Status = "hecho"
)

type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

// Task is a workshop to-do: follow up a quote, call a client, restock.
// Tags come from a small fixed set (presupuesto / cliente / otros).
type Task struct {
	ID        int64
	Title     string
	Notes     string
	Status    Status
	Priority  Priority
	DueDate   *time.Time
	Tags      []string
	CreatedBy *int64
	UpdatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
