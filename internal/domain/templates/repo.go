package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Filter narrows List; zero values mean "no filter". Search matches the
// template name or any tag, case-insensitive.
type Filter struct {
	Category    string
	ProjectType string
	Search      string
}

const templateColumns = `id, name, items, markups, consumables, extras, subtotals,
	extras_total, cost_total, final_price, profit, category, project_type, tags,
	created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Items,
		&t.Markups,
		&t.Consumables,
		&t.Extras,
		&t.Subtotals,
		&t.ExtrasTotal,
		&t.CostTotal,
		&t.FinalPrice,
		&t.Profit,
		&t.Category,
		&t.ProjectType,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, t Template) (*Template, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cost_templates
			(name, items, markups, consumables, extras, subtotals,
			 extras_total, cost_total, final_price, profit, category, project_type, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+templateColumns+`
	`, t.Name, t.Items, t.Markups, t.Consumables, t.Extras, t.Subtotals,
		t.ExtrasTotal, t.CostTotal, t.FinalPrice, t.Profit, t.Category, t.ProjectType, t.Tags)
	return scanTemplate(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Template, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM cost_templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) Update(ctx context.Context, t Template) (*Template, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE cost_templates
		SET name=$2, items=$3, markups=$4, consumables=$5, extras=$6, subtotals=$7,
		    extras_total=$8, cost_total=$9, final_price=$10, profit=$11,
		    category=$12, project_type=$13, tags=$14, updated_at=now()
		WHERE id=$1
		RETURNING `+templateColumns+`
	`, t.ID, t.Name, t.Items, t.Markups, t.Consumables, t.Extras, t.Subtotals,
		t.ExtrasTotal, t.CostTotal, t.FinalPrice, t.Profit, t.Category, t.ProjectType, t.Tags)
	out, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cost_templates WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Template, error) {
	q := `SELECT ` + templateColumns + ` FROM cost_templates WHERE TRUE`
	var args []any

	if f.Category != "" && f.Category != "todas" {
		args = append(args, f.Category)
		q += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.ProjectType != "" && f.ProjectType != "todos" {
		args = append(args, f.ProjectType)
		q += fmt.Sprintf(` AND project_type = $%d`, len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		q += fmt.Sprintf(` AND (name ILIKE $%d OR EXISTS (
			SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))`, len(args), len(args))
	}
	q += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Items, &t.Markups, &t.Consumables, &t.Extras, &t.Subtotals,
			&t.ExtrasTotal, &t.CostTotal, &t.FinalPrice, &t.Profit,
			&t.Category, &t.ProjectType, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
