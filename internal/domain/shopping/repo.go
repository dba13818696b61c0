package shopping

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The table holds exactly one row, keyed "global". The key column exists so
// the upsert has a conflict target.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const listColumns = `id, sections, cash_available, digital_money, updated_at`

func scanList(row pgx.Row) (*List, error) {
	var l List
	if err := row.Scan(
		&l.ID,
		&l.Sections,
		&l.CashAvailable,
		&l.DigitalMoney,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetOrCreate returns the shared list, inserting the default empty one on
// first access.
func (r *Repo) GetOrCreate(ctx context.Context) (*List, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shopping_list (key) VALUES ('global')
		ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		RETURNING `+listColumns+`
	`)
	return scanList(row)
}

// Save replaces the whole list in one write.
func (r *Repo) Save(ctx context.Context, l List) (*List, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shopping_list (key, sections, cash_available, digital_money)
		VALUES ('global', $1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET sections = EXCLUDED.sections,
		    cash_available = EXCLUDED.cash_available,
		    digital_money = EXCLUDED.digital_money,
		    updated_at = now()
		RETURNING `+listColumns+`
	`, l.Sections, l.CashAvailable, l.DigitalMoney)
	return scanList(row)
}
