package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallerapp/taller-backend/internal/domain/products"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
	"github.com/tallerapp/taller-backend/internal/metrics"
)

// Validation errors; callers map them to user-facing responses.
var (
	ErrQuantityNotPositive     = errors.New("la cantidad debe ser mayor a cero")
	ErrManualPriceNotPositive  = errors.New("el precio manual debe ser mayor a cero")
	ErrDownPaymentExceedsTotal = errors.New("la seña no puede ser mayor al total")
	ErrProductNotFound         = errors.New("producto no encontrado")
	ErrBadDeadline             = errors.New("fecha límite inválida, se espera AAAA-MM-DD")
)

type Store interface {
	Create(ctx context.Context, s Sale) (*Sale, error)
	GetByID(ctx context.Context, id int64) (*Sale, error)
	Update(ctx context.Context, s Sale) (*Sale, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, page, limit int) ([]Sale, int, error)
}

// ProductStore loads products with their cost template populated.
type ProductStore interface {
	GetByID(ctx context.Context, id int64) (*products.Product, error)
}

type Notifier interface {
	Notify(text string)
}

type Service struct {
	store     Store
	products  ProductStore
	materials templates.MaterialLookup
	log       *slog.Logger
	notifier  Notifier
	now       func() time.Time
}

func NewService(store Store, products ProductStore, materials templates.MaterialLookup, log *slog.Logger, notifier Notifier) *Service {
	return &Service{
		store:     store,
		products:  products,
		materials: materials,
		log:       log,
		notifier:  notifier,
		now:       time.Now,
	}
}

type CreateInput struct {
	Date          *time.Time
	Client        string
	Channel       string
	ProductID     *int64
	ProductName   string
	TemplateID    *int64
	Quantity      float64
	Description   string
	ShippingValue float64
	DownPayment   float64
	ManualPrice   float64
	Deadline      string // AAAA-MM-DD, optional
	Status        Status
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	if in.Quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}

	var product *products.Product
	if in.ProductID != nil {
		var err error
		product, err = s.products.GetByID(ctx, *in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
	} else if in.ManualPrice <= 0 {
		return nil, ErrManualPriceNotPositive
	}

	snap, err := BuildSnapshot(ctx, s.materials, product, in.ManualPrice, s.now())
	if err != nil {
		return nil, err
	}

	total := snap.UnitPrice*in.Quantity + in.ShippingValue
	if in.DownPayment > total {
		return nil, ErrDownPaymentExceedsTotal
	}

	deadline, err := parseDeadline(in.Deadline)
	if err != nil {
		return nil, err
	}

	sale := Sale{
		Date:          s.now(),
		Client:        in.Client,
		Channel:       in.Channel,
		ProductID:     in.ProductID,
		ProductName:   in.ProductName,
		TemplateID:    in.TemplateID,
		Quantity:      in.Quantity,
		Description:   in.Description,
		ShippingValue: in.ShippingValue,
		Total:         total,
		DownPayment:   in.DownPayment,
		Remaining:     total - in.DownPayment,
		Deadline:      deadline,
		Status:        in.Status,
		Snapshot:      snap,
	}
	if in.Date != nil {
		sale.Date = *in.Date
	}
	if product == nil {
		manual := in.ManualPrice
		sale.ManualPrice = &manual
	}
	if sale.Status == "" {
		sale.Status = StatusPending
	}
	if sale.Status == StatusInProgress {
		now := s.now()
		sale.InProgressAt = &now
	}

	created, err := s.store.Create(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	metrics.SalesPriced.WithLabelValues(snap.Source).Inc()
	s.log.Info("sale created", "id", created.ID, "client", created.Client,
		"total", created.Total, "source", snap.Source)
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("Nueva venta #%d de %s por %.2f (%s).",
			created.ID, created.Client, created.Total, snap.Source))
	}
	return created, nil
}

// UpdateInput keeps partial-update semantics: nil fields stay as stored.
// ClearProduct detaches the product, which flips the sale to manual pricing.
type UpdateInput struct {
	Date          *time.Time
	Client        *string
	Channel       *string
	ProductID     *int64
	ClearProduct  bool
	ProductName   *string
	TemplateID    *int64
	Quantity      *float64
	Description   *string
	ShippingValue *float64
	DownPayment   *float64
	ManualPrice   *float64
	Deadline      *string // empty string clears
	Status        *Status
}

// Update merges the payload over the stored sale. Totals and the price
// snapshot are recomputed only when a price-relevant field changed; the
// snapshot stays frozen otherwise. Returns nil when the sale does not exist.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Sale, error) {
	actual, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		return nil, nil
	}

	merged := *actual
	if in.Date != nil {
		merged.Date = *in.Date
	}
	if in.Client != nil {
		merged.Client = *in.Client
	}
	if in.Channel != nil {
		merged.Channel = *in.Channel
	}
	if in.ProductID != nil {
		merged.ProductID = in.ProductID
	}
	if in.ClearProduct {
		merged.ProductID = nil
	}
	if in.ProductName != nil {
		merged.ProductName = *in.ProductName
	}
	if in.TemplateID != nil {
		merged.TemplateID = in.TemplateID
	}
	if in.Quantity != nil {
		merged.Quantity = *in.Quantity
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if in.ShippingValue != nil {
		merged.ShippingValue = *in.ShippingValue
	}
	if in.DownPayment != nil {
		merged.DownPayment = *in.DownPayment
	}
	if in.ManualPrice != nil {
		merged.ManualPrice = in.ManualPrice
	}
	if in.Deadline != nil {
		deadline, err := parseDeadline(*in.Deadline)
		if err != nil {
			return nil, err
		}
		merged.Deadline = deadline
	}

	priceInputsChanged := in.ProductID != nil || in.ClearProduct ||
		in.Quantity != nil || in.ManualPrice != nil
	needsRecalc := priceInputsChanged || in.ShippingValue != nil || in.DownPayment != nil

	if needsRecalc {
		if merged.Quantity <= 0 {
			return nil, ErrQuantityNotPositive
		}

		var product *products.Product
		if merged.ProductID != nil {
			product, err = s.products.GetByID(ctx, *merged.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, ErrProductNotFound
			}
			merged.ManualPrice = nil
		} else {
			if merged.ManualPrice == nil || *merged.ManualPrice <= 0 {
				return nil, ErrManualPriceNotPositive
			}
		}

		unitPrice := merged.Snapshot.UnitPrice
		if priceInputsChanged {
			manual := 0.0
			if merged.ManualPrice != nil {
				manual = *merged.ManualPrice
			}
			snap, err := BuildSnapshot(ctx, s.materials, product, manual, s.now())
			if err != nil {
				return nil, err
			}
			merged.Snapshot = snap
			unitPrice = snap.UnitPrice
			metrics.SalesPriced.WithLabelValues(snap.Source).Inc()
		}

		total := unitPrice*merged.Quantity + merged.ShippingValue
		if merged.DownPayment > total {
			return nil, ErrDownPaymentExceedsTotal
		}
		merged.Total = total
		merged.Remaining = total - merged.DownPayment
	}

	if in.Status != nil {
		merged.Status = *in.Status
		if *in.Status == StatusInProgress {
			now := s.now()
			merged.InProgressAt = &now
		} else {
			merged.InProgressAt = nil
		}
	}

	updated, err := s.store.Update(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("update sale %d: %w", id, err)
	}
	if updated != nil {
		s.log.Info("sale updated", "id", id, "total", updated.Total, "status", updated.Status)
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Sale, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int) ([]Sale, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.store.List(ctx, page, limit)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

// parseDeadline accepts AAAA-MM-DD and anchors it at UTC noon so the date
// survives timezone shifts in clients.
func parseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, ErrBadDeadline
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	return &t, nil
}
