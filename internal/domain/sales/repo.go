package sales

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const saleColumns = `id, date, client, channel, product_id, product_name, template_id,
	quantity, description, shipping_value, total, down_payment, remaining,
	manual_price, deadline, status, in_progress_at, snapshot, created_at, updated_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	if err := row.Scan(
		&s.ID,
		&s.Date,
		&s.Client,
		&s.Channel,
		&s.ProductID,
		&s.ProductName,
		&s.TemplateID,
		&s.Quantity,
		&s.Description,
		&s.ShippingValue,
		&s.Total,
		&s.DownPayment,
		&s.Remaining,
		&s.ManualPrice,
		&s.Deadline,
		&s.Status,
		&s.InProgressAt,
		&s.Snapshot,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Create(ctx context.Context, s Sale) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sales
			(date, client, channel, product_id, product_name, template_id, quantity,
			 description, shipping_value, total, down_payment, remaining, manual_price,
			 deadline, status, in_progress_at, snapshot)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING `+saleColumns+`
	`, s.Date, s.Client, s.Channel, s.ProductID, s.ProductName, s.TemplateID, s.Quantity,
		s.Description, s.ShippingValue, s.Total, s.DownPayment, s.Remaining, s.ManualPrice,
		s.Deadline, s.Status, s.InProgressAt, s.Snapshot)
	return scanSale(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *Repo) Update(ctx context.Context, s Sale) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sales
		SET date=$2, client=$3, channel=$4, product_id=$5, product_name=$6, template_id=$7,
		    quantity=$8, description=$9, shipping_value=$10, total=$11, down_payment=$12,
		    remaining=$13, manual_price=$14, deadline=$15, status=$16, in_progress_at=$17,
		    snapshot=$18, updated_at=now()
		WHERE id=$1
		RETURNING `+saleColumns+`
	`, s.ID, s.Date, s.Client, s.Channel, s.ProductID, s.ProductName, s.TemplateID,
		s.Quantity, s.Description, s.ShippingValue, s.Total, s.DownPayment, s.Remaining,
		s.ManualPrice, s.Deadline, s.Status, s.InProgressAt, s.Snapshot)
	out, err := scanSale(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns one page ordered by sale date, newest first, plus the total
// row count for the pager.
func (r *Repo) List(ctx context.Context, page, limit int) ([]Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		ORDER BY date DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(
			&s.ID, &s.Date, &s.Client, &s.Channel, &s.ProductID, &s.ProductName,
			&s.TemplateID, &s.Quantity, &s.Description, &s.ShippingValue, &s.Total,
			&s.DownPayment, &s.Remaining, &s.ManualPrice, &s.Deadline, &s.Status,
			&s.InProgressAt, &s.Snapshot, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
