package products

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerapp/taller-backend/internal/domain/templates"
)

type Repo struct {
	pool      *pgxpool.Pool
	templates *templates.Repo
}

func NewRepo(pool *pgxpool.Pool, tpl *templates.Repo) *Repo {
	return &Repo{pool: pool, templates: tpl}
}

const productColumns = `id, name, description, template_id, catalog, model, active, price, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.TemplateID,
		&p.Catalog,
		&p.Model,
		&p.Active,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, template_id, catalog, model, active, price, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+productColumns+`
	`, p.Name, p.Description, p.TemplateID, strings.ToLower(p.Catalog), strings.ToLower(p.Model),
		p.Active, p.Price, p.Stock)
	return scanProduct(row)
}

// GetByID loads a product with its cost template populated, so sale pricing
// can run over the template without a second round trip by the caller.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if p.TemplateID != nil {
		tpl, err := r.templates.GetByID(ctx, *p.TemplateID)
		if err != nil {
			return nil, err
		}
		p.Template = tpl
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name=$2, description=$3, template_id=$4, catalog=$5, model=$6,
		    active=$7, price=$8, stock=$9, updated_at=now()
		WHERE id=$1
		RETURNING `+productColumns+`
	`, p.ID, p.Name, p.Description, p.TemplateID, strings.ToLower(p.Catalog),
		strings.ToLower(p.Model), p.Active, p.Price, p.Stock)
	out, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY catalog, name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.TemplateID, &p.Catalog, &p.Model,
			&p.Active, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
