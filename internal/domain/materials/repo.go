package materials

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const materialColumns = `id, name, category, type, size, thickness, price, stock, created_at, updated_at`

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Category,
		&m.Type,
		&m.Size,
		&m.Thickness,
		&m.Price,
		&m.Stock,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, category, type, size, thickness, price, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+materialColumns+`
	`, m.Name, m.Category, m.Type, m.Size, m.Thickness, m.Price, m.Stock)
	return scanMaterial(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
	m, err := scanMaterial(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetManyByIDs returns the materials that still exist; ids without a row are
// simply absent from the result (missing materials are the caller's soft-fail).
func (r *Repo) GetManyByIDs(ctx context.Context, ids []int64) ([]Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+materialColumns+` FROM materials WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Type, &m.Size,
			&m.Thickness, &m.Price, &m.Stock, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, m Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials
		SET name=$2, category=$3, type=$4, size=$5, thickness=$6, price=$7, stock=$8, updated_at=now()
		WHERE id=$1
		RETURNING `+materialColumns+`
	`, m.ID, m.Name, m.Category, m.Type, m.Size, m.Thickness, m.Price, m.Stock)
	out, err := scanMaterial(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpdatePrice(ctx context.Context, id int64, price float64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET price=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+materialColumns+`
	`, id, price)
	out, err := scanMaterial(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) List(ctx context.Context, category string) ([]Material, error) {
	q := `SELECT ` + materialColumns + ` FROM materials`
	args := []any{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY category, name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Type, &m.Size,
			&m.Thickness, &m.Price, &m.Stock, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SearchByName matches name or category, case-insensitive.
func (r *Repo) SearchByName(ctx context.Context, q string) ([]Material, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	rows, err := r.pool.Query(ctx, `
		SELECT `+materialColumns+` FROM materials
		WHERE LOWER(name) LIKE $1 OR LOWER(category) LIKE $1
		ORDER BY category, name
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Type, &m.Size,
			&m.Thickness, &m.Price, &m.Stock, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindByAttrs is the de-duplication lookup used by the Excel import:
// a material is considered the same when name/type/size/thickness match.
func (r *Repo) FindByAttrs(ctx context.Context, name, typ, size, thickness string) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+materialColumns+` FROM materials
		WHERE LOWER(name)=LOWER($1) AND LOWER(type)=LOWER($2)
		  AND LOWER(size)=LOWER($3) AND LOWER(thickness)=LOWER($4)
		LIMIT 1
	`, name, typ, size, thickness)
	m, err := scanMaterial(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}
