package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var ErrTitleRequired = errors.New("el título de la tarea es obligatorio")

type Store interface {
	Create(ctx context.Context, t Task) (*Task, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, t Task) (*Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter, page, limit int) ([]Task, int, error)
}

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

type CreateInput struct {
	Title    string
	Notes    string
	Status   Status
	Priority Priority
	DueDate  *time.Time
	Tags     []string
	UserID   *int64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}

	t := Task{
		Title:     strings.TrimSpace(in.Title),
		Notes:     strings.TrimSpace(in.Notes),
		Status:    in.Status,
		Priority:  in.Priority,
		DueDate:   in.DueDate,
		Tags:      in.Tags,
		CreatedBy: in.UserID,
		UpdatedBy: in.UserID,
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Tags == nil {
		// never nil: the tags column is NOT NULL
		t.Tags = []string{}
	}

	created, err := s.store.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Info("task created", "id", created.ID, "title", created.Title, "priority", created.Priority)
	return created, nil
}

// UpdateInput keeps partial-update semantics: nil fields stay as stored.
// ClearDueDate removes the deadline.
type UpdateInput struct {
	Title        *string
	Notes        *string
	Status       *Status
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
	UserID       *int64
}

// Update merges the payload over the stored task. Returns nil when the task
// does not exist.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Task, error) {
	actual, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		return nil, nil
	}

	merged := *actual
	if in.Title != nil {
		merged.Title = strings.TrimSpace(*in.Title)
	}
	if in.Notes != nil {
		merged.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.Priority != nil {
		merged.Priority = *in.Priority
	}
	if in.DueDate != nil {
		merged.DueDate = in.DueDate
	}
	if in.ClearDueDate {
		merged.DueDate = nil
	}
	if in.Tags != nil {
		merged.Tags = *in.Tags
		if merged.Tags == nil {
			merged.Tags = []string{}
		}
	}
	merged.UpdatedBy = in.UserID

	if merged.Title == "" {
		return nil, ErrTitleRequired
	}

	updated, err := s.store.Update(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if updated != nil {
		s.log.Info("task updated", "id", id, "status", updated.Status)
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Task, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, page, limit int) ([]Task, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.store.List(ctx, f, page, limit)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}
