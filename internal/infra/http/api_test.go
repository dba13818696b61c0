package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
)

type memTemplateStore struct {
	seq  int64
	byID map[int64]templates.Template
}

func (f *memTemplateStore) Create(_ context.Context, t templates.Template) (*templates.Template, error) {
	f.seq++
	t.ID = f.seq
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *memTemplateStore) GetByID(_ context.Context, id int64) (*templates.Template, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (f *memTemplateStore) Update(_ context.Context, t templates.Template) (*templates.Template, error) {
	if _, ok := f.byID[t.ID]; !ok {
		return nil, nil
	}
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *memTemplateStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *memTemplateStore) List(_ context.Context, _ templates.Filter) ([]templates.Template, error) {
	out := make([]templates.Template, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, t)
	}
	return out, nil
}

type memLookup struct {
	byID map[int64]materials.Material
}

func (f *memLookup) GetManyByIDs(_ context.Context, ids []int64) ([]materials.Material, error) {
	var out []materials.Material
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := &memTemplateStore{byID: map[int64]templates.Template{}}
	lookup := &memLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Name: "caño 20x20", Category: "metal", Price: 100},
	}}
	svc := templates.NewService(store, lookup, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	srv := New(":0", false, API{Templates: svc})
	ts := httptest.NewServer(srv.srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestCreateTemplateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		"name": "Mesa ratona",
		"items": [{"materialId": 1, "quantity": 2, "category": "metal"}],
		"markups": {"metal": 20}
	}`
	resp, err := http.Post(ts.URL+"/api/templates", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FinalPrice":240`)
	assert.Contains(t, string(raw), `"Category":"Herrería"`)
}

func TestCreateTemplateRequiresName(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/templates", "application/json", strings.NewReader(`{"name":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTemplateNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/templates/404")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecalculateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/templates", "application/json", strings.NewReader(
		`{"name": "Banco", "items": [{"materialId": 1, "quantity": 1, "category": "metal"}]}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/admin/recalculate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":1`)
	assert.Contains(t, string(raw), `"updated":1`)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
