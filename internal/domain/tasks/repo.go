package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Filter narrows List; zero values mean "no filter". Query matches the title
// or the notes, case-insensitive.
type Filter struct {
	Query    string
	Status   Status
	Priority Priority
	Tag      string
	Sort     string // dueDate | updatedAt | "" (newest first)
}

const taskColumns = `id, title, notes, status, priority, due_date, tags,
	created_by, updated_by, created_at, updated_at`

// sortClause maps the sort key to a stable ordering; ties always break on id
// so pagination never shuffles rows.
func sortClause(sort string) string {
	switch sort {
	case "dueDate":
		return ` ORDER BY due_date ASC NULLS LAST, created_at DESC, id DESC`
	case "updatedAt":
		return ` ORDER BY updated_at DESC, id DESC`
	default:
		return ` ORDER BY created_at DESC, id DESC`
	}
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Notes,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.Tags,
		&t.CreatedBy,
		&t.UpdatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, t Task) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, notes, status, priority, due_date, tags, created_by, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+taskColumns+`
	`, t.Title, t.Notes, t.Status, t.Priority, t.DueDate, t.Tags, t.CreatedBy, t.UpdatedBy)
	return scanTask(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) Update(ctx context.Context, t Task) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title=$2, notes=$3, status=$4, priority=$5, due_date=$6, tags=$7,
		    updated_by=$8, updated_at=now()
		WHERE id=$1
		RETURNING `+taskColumns+`
	`, t.ID, t.Title, t.Notes, t.Status, t.Priority, t.DueDate, t.Tags, t.UpdatedBy)
	out, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func filterSQL(f Filter) (string, []any) {
	q := ` WHERE TRUE`
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		q += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		q += fmt.Sprintf(` AND $%d = ANY(tags)`, len(args))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		args = append(args, "%"+s+"%")
		q += fmt.Sprintf(` AND (title ILIKE $%d OR notes ILIKE $%d)`, len(args), len(args))
	}
	return q, args
}

// List returns one page matching the filter plus the total match count.
func (r *Repo) List(ctx context.Context, f Filter, page, limit int) ([]Task, int, error) {
	where, args := filterSQL(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	q := `SELECT ` + taskColumns + ` FROM tasks` + where + sortClause(f.Sort) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Notes, &t.Status, &t.Priority, &t.DueDate, &t.Tags,
			&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
