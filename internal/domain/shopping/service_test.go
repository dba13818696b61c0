package shopping

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	list *List
}

func (f *fakeStore) GetOrCreate(_ context.Context) (*List, error) {
	if f.list == nil {
		f.list = &List{ID: 1, Sections: Sections{}, UpdatedAt: time.Now()}
	}
	out := *f.list
	return &out, nil
}

func (f *fakeStore) Save(_ context.Context, l List) (*List, error) {
	l.ID = 1
	l.UpdatedAt = time.Now()
	f.list = &l
	out := l
	return &out, nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNormalizeSections(t *testing.T) {
	got := NormalizeSections(Sections{
		"herreria": {{"nombre": "caño 20x20"}},
		"vidrios":  {{"nombre": "vidrio 4mm"}},
		"pintura":  nil,
	})

	// All four trade sections present, never nil.
	for _, key := range []string{"herreria", "carpinteria", "pintura", "otros"} {
		require.Contains(t, got, key)
		assert.NotNil(t, got[key])
	}
	assert.Len(t, got["herreria"], 1)
	assert.Empty(t, got["carpinteria"])
	// Extra sections survive.
	assert.Len(t, got["vidrios"], 1)
}

func TestStripItemFields(t *testing.T) {
	in := Sections{
		"herreria": {
			{"nombre": "caño", "nombreManual": "viejo", "cantidad": 2.0},
			{"nombre": "chapa"},
		},
		"otros": {{"nombre": "lija", "nombreCliente": "x"}},
	}

	out, changed := StripItemFields(in, "nombreManual", "nombreCliente")
	require.True(t, changed)
	assert.NotContains(t, out["herreria"][0], "nombreManual")
	assert.Equal(t, "caño", out["herreria"][0]["nombre"])
	assert.Equal(t, 2.0, out["herreria"][0]["cantidad"])
	assert.NotContains(t, out["otros"][0], "nombreCliente")
	// Input is untouched.
	assert.Contains(t, in["herreria"][0], "nombreManual")

	_, changed = StripItemFields(out, "nombreManual", "nombreCliente")
	assert.False(t, changed)
}

func TestShoppingGetReturnsCanonicalShape(t *testing.T) {
	svc := newTestService(&fakeStore{})

	l, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, l.Sections, 4)
	assert.Empty(t, l.Sections[SectionHerreria])
}

func TestShoppingUpdateSanitizesAmounts(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	saved, err := svc.Update(context.Background(), UpdateInput{
		Sections:      Sections{"herreria": {{"nombre": "electrodos"}}},
		CashAvailable: math.NaN(),
		DigitalMoney:  1500,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, saved.CashAvailable)
	assert.Equal(t, 1500.0, saved.DigitalMoney)
	assert.Len(t, saved.Sections[SectionHerreria], 1)
	assert.NotNil(t, saved.Sections[SectionCarpinteria])
}

func TestShoppingStripLegacyFields(t *testing.T) {
	store := &fakeStore{list: &List{
		ID: 1,
		Sections: Sections{
			"herreria": {{"nombre": "caño", "nombreManual": "legacy"}},
		},
	}}
	svc := newTestService(store)

	changed, err := svc.StripLegacyFields(context.Background(), "nombreManual", "nombreCliente")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, store.list.Sections["herreria"][0], "nombreManual")

	changed, err = svc.StripLegacyFields(context.Background(), "nombreManual", "nombreCliente")
	require.NoError(t, err)
	assert.False(t, changed)
}
