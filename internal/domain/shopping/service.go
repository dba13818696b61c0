package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

type Store interface {
	GetOrCreate(ctx context.Context) (*List, error)
	Save(ctx context.Context, l List) (*List, error)
}

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Get returns the shared list in canonical shape.
func (s *Service) Get(ctx context.Context) (*List, error) {
	l, err := s.store.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shopping list: %w", err)
	}
	l.Sections = NormalizeSections(l.Sections)
	return l, nil
}

type UpdateInput struct {
	Sections      Sections
	CashAvailable float64
	DigitalMoney  float64
}

// Update replaces the whole list. Clients always send the full document, as
// the original frontend does; there is no per-item merge.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*List, error) {
	saved, err := s.store.Save(ctx, List{
		Sections:      NormalizeSections(in.Sections),
		CashAvailable: amount(in.CashAvailable),
		DigitalMoney:  amount(in.DigitalMoney),
	})
	if err != nil {
		return nil, fmt.Errorf("save shopping list: %w", err)
	}
	saved.Sections = NormalizeSections(saved.Sections)
	s.log.Info("shopping list saved",
		"cash", saved.CashAvailable, "digital", saved.DigitalMoney)
	return saved, nil
}

// StripLegacyFields removes the named fields from every stored item and
// persists the result when something changed. Admin maintenance operation.
func (s *Service) StripLegacyFields(ctx context.Context, fields ...string) (bool, error) {
	l, err := s.store.GetOrCreate(ctx)
	if err != nil {
		return false, err
	}

	cleaned, changed := StripItemFields(NormalizeSections(l.Sections), fields...)
	if !changed {
		return false, nil
	}

	l.Sections = cleaned
	if _, err := s.store.Save(ctx, *l); err != nil {
		return false, err
	}
	s.log.Info("shopping list cleaned", "fields", fields)
	return true, nil
}
