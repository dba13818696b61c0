package tasks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	seq  int64
	byID map[int64]Task
}

func newFakeStore() *fakeStore { return &fakeStore{byID: map[int64]Task{}} }

func (f *fakeStore) Create(_ context.Context, t Task) (*Task, error) {
	f.seq++
	t.ID = f.seq
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Task, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (f *fakeStore) Update(_ context.Context, t Task) (*Task, error) {
	if _, ok := f.byID[t.ID]; !ok {
		return nil, nil
	}
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeStore) List(_ context.Context, _ Filter, _, _ int) ([]Task, int, error) {
	out := make([]Task, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, t)
	}
	return out, len(out), nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptrI64(v int64) *int64 { return &v }

func TestTaskCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(newFakeStore())

	created, err := svc.Create(context.Background(), CreateInput{
		Title:  "  Llamar al cliente  ",
		UserID: ptrI64(7),
	})
	require.NoError(t, err)

	assert.Equal(t, "Llamar al cliente", created.Title)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.NotNil(t, created.Tags)
	assert.Empty(t, created.Tags)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, int64(7), *created.CreatedBy)
}

func TestTaskCreateRequiresTitle(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create(context.Background(), CreateInput{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestTaskUpdatePartialSemantics(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	due := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), CreateInput{
		Title:    "Armar presupuesto",
		Priority: PriorityHigh,
		DueDate:  &due,
		Tags:     []string{"presupuesto"},
	})
	require.NoError(t, err)

	done := StatusDone
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Status: &done,
		UserID: ptrI64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDone, updated.Status)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Armar presupuesto", updated.Title)
	assert.Equal(t, PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, due, *updated.DueDate)
	assert.Equal(t, []string{"presupuesto"}, updated.Tags)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, int64(3), *updated.UpdatedBy)
}

func TestTaskUpdateClearsDueDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	due := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), CreateInput{Title: "Pedir hierro", DueDate: &due})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestTaskUpdateMissingReturnsNil(t *testing.T) {
	svc := newTestService(newFakeStore())

	updated, err := svc.Update(context.Background(), 404, UpdateInput{})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestSortClause(t *testing.T) {
	assert.Contains(t, sortClause("dueDate"), "due_date ASC NULLS LAST")
	assert.Contains(t, sortClause("updatedAt"), "updated_at DESC")
	assert.Contains(t, sortClause(""), "created_at DESC")
	assert.Contains(t, sortClause("nonsense"), "created_at DESC")
}
