package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/metrics"
)

var ErrNameRequired = errors.New("el nombre de la plantilla es obligatorio")

// Store is the persistence the service needs; *Repo satisfies it.
type Store interface {
	Create(ctx context.Context, t Template) (*Template, error)
	GetByID(ctx context.Context, id int64) (*Template, error)
	Update(ctx context.Context, t Template) (*Template, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]Template, error)
}

// MaterialLookup resolves catalog materials; *materials.Repo satisfies it.
// Ids without a matching material are simply absent from the result.
type MaterialLookup interface {
	GetManyByIDs(ctx context.Context, ids []int64) ([]materials.Material, error)
}

// Notifier delivers an admin-facing message; may be nil.
type Notifier interface {
	Notify(text string)
}

type Service struct {
	store     Store
	materials MaterialLookup
	log       *slog.Logger
	notifier  Notifier
}

func NewService(store Store, materials MaterialLookup, log *slog.Logger, notifier Notifier) *Service {
	return &Service{store: store, materials: materials, log: log, notifier: notifier}
}

type CreateInput struct {
	Name        string
	Items       []LineItem
	Markups     map[string]float64
	Consumables map[string]float64
	Extras      Extras
	Category    string // explicit display category; inferred when empty
	ProjectType string
	Tags        []string
}

// UpdateInput carries partial-update semantics: nil fields keep the stored
// value, present fields replace it wholesale.
type UpdateInput struct {
	Name        *string
	Items       *[]LineItem
	Markups     *map[string]float64
	Consumables *map[string]float64
	Extras      *Extras
	Category    *string
	ProjectType *string
	Tags        *[]string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Template, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}

	t, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, *t)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.log.Info("template created", "id", created.ID, "name", created.Name, "finalPrice", created.FinalPrice)
	return created, nil
}

// Update recomputes the pricing after merging the partial payload over the
// stored template. Returns nil when the template does not exist.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Template, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	merged := CreateInput{
		Name:        existing.Name,
		Items:       existing.Items,
		Markups:     existing.Markups,
		Consumables: existing.Consumables,
		Extras:      existing.Extras,
		Category:    existing.Category,
		ProjectType: existing.ProjectType,
		Tags:        existing.Tags,
	}
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Items != nil {
		merged.Items = *in.Items
	}
	if in.Markups != nil {
		merged.Markups = *in.Markups
	}
	if in.Consumables != nil {
		merged.Consumables = *in.Consumables
	}
	if in.Extras != nil {
		merged.Extras = *in.Extras
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}
	if in.ProjectType != nil {
		merged.ProjectType = *in.ProjectType
	}
	if in.Tags != nil {
		merged.Tags = *in.Tags
	}
	if strings.TrimSpace(merged.Name) == "" {
		return nil, ErrNameRequired
	}

	t, err := s.build(ctx, merged)
	if err != nil {
		return nil, err
	}
	t.ID = id
	updated, err := s.store.Update(ctx, *t)
	if err != nil {
		return nil, fmt.Errorf("update template %d: %w", id, err)
	}
	if updated != nil {
		s.log.Info("template updated", "id", id, "finalPrice", updated.FinalPrice)
	}
	return updated, nil
}

// Duplicate deep-copies a template under a new name and re-runs the create
// path, so the copy's totals reflect current material prices rather than the
// source's stored numbers. Returns nil when the source does not exist.
func (s *Service) Duplicate(ctx context.Context, id int64, name string) (*Template, error) {
	src, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}

	if strings.TrimSpace(name) == "" {
		name = src.Name + " (copia)"
	}

	in := CreateInput{
		Name:        name,
		Items:       append([]LineItem(nil), src.Items...),
		Markups:     copyMap(src.Markups),
		Consumables: copyMap(src.Consumables),
		Extras:      copyExtras(src.Extras),
		Category:    src.Category,
		ProjectType: src.ProjectType,
		Tags:        append([]string(nil), src.Tags...),
	}
	return s.Create(ctx, in)
}

// RecalcResult reports one bulk recalculation run.
type RecalcResult struct {
	Total   int
	Updated int
	Errors  []RecalcError
}

type RecalcError struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// RecalculateAll reprices every stored template against current material
// prices. One template's failure never aborts the rest: each failure lands in
// Errors and the iteration continues. Meant to run as an admin batch after
// material price changes (e.g. an Excel price import).
func (s *Service) RecalculateAll(ctx context.Context) (RecalcResult, error) {
	all, err := s.store.List(ctx, Filter{})
	if err != nil {
		return RecalcResult{}, err
	}

	res := RecalcResult{Total: len(all)}
	for _, t := range all {
		if err := s.recalculateOne(ctx, t); err != nil {
			res.Errors = append(res.Errors, RecalcError{ID: t.ID, Message: err.Error()})
			continue
		}
		res.Updated++
	}

	metrics.RecalcRuns.Inc()
	metrics.TemplatesRecalculated.Add(float64(res.Updated))
	metrics.RecalcErrors.Add(float64(len(res.Errors)))

	s.log.Info("bulk recalculation finished",
		"total", res.Total, "updated", res.Updated, "errors", len(res.Errors))
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf(
			"Recálculo de plantillas: %d actualizadas, %d con errores (de %d).",
			res.Updated, len(res.Errors), res.Total))
	}
	return res, nil
}

func (s *Service) recalculateOne(ctx context.Context, t Template) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recalculation panic: %v", r)
		}
	}()

	if len(t.Items) == 0 {
		return errors.New("plantilla sin items")
	}

	// The category is left empty so the classifier reruns over the fresh
	// subtotals: a price shift can move a template between trades.
	built, err := s.build(ctx, CreateInput{
		Name:        t.Name,
		Items:       t.Items,
		Markups:     t.Markups,
		Consumables: t.Consumables,
		Extras:      t.Extras,
		ProjectType: t.ProjectType,
		Tags:        t.Tags,
	})
	if err != nil {
		return err
	}
	built.ID = t.ID

	updated, err := s.store.Update(ctx, *built)
	if err != nil {
		return err
	}
	if updated == nil {
		return errors.New("plantilla eliminada durante el recálculo")
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Template, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Template, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

// build runs the whole pipeline over a full payload: normalize extras,
// resolve material prices, price the template, classify when the caller did
// not pick a category.
func (s *Service) build(ctx context.Context, in CreateInput) (*Template, error) {
	prices, err := s.resolvePrices(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	extras := NormalizeExtras(in.Extras)
	result := CalculatePrice(in.Items, in.Markups, in.Consumables, extras, prices)
	for _, sk := range result.Skipped {
		s.log.Warn("line item contributed nothing",
			"template", in.Name, "index", sk.Index, "materialId", sk.MaterialID, "reason", sk.Reason)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = ClassifyCategory(result.Subtotals)
	}
	projectType := strings.TrimSpace(in.ProjectType)
	if projectType == "" {
		projectType = "Otro"
	}

	return &Template{
		Name:        strings.TrimSpace(in.Name),
		Items:       in.Items,
		Markups:     in.Markups,
		Consumables: in.Consumables,
		Extras:      extras,
		Category:    category,
		ProjectType: projectType,
		Tags:        normalizeTags(in.Tags),
		Subtotals:   result.Subtotals,
		ExtrasTotal: result.ExtrasTotal,
		CostTotal:   result.CostTotal,
		FinalPrice:  result.FinalPrice,
		Profit:      result.Profit,
	}, nil
}

func (s *Service) resolvePrices(ctx context.Context, items []LineItem) (map[int64]float64, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, it := range items {
		if it.MaterialID == nil || seen[*it.MaterialID] {
			continue
		}
		seen[*it.MaterialID] = true
		ids = append(ids, *it.MaterialID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	mats, err := s.materials.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve materials: %w", err)
	}
	prices := make(map[int64]float64, len(mats))
	for _, m := range mats {
		prices[m.ID] = m.Price
	}
	return prices, nil
}

func copyMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyExtras(e Extras) Extras {
	out := e
	out.Custom = append([]CustomExtra(nil), e.Custom...)
	return out
}

func normalizeTags(tags []string) []string {
	out := []string{} // never nil: the tags column is NOT NULL
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
