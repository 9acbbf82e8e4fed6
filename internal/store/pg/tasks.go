package pg

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"grow104.org/internal/garden"
	"grow104.org/internal/ids"
)

type tasks struct {
	db *sql.DB
}

const taskColumns = `id, garden_id, assigned_to, title, description, due_date, status,
	created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*garden.Task, error) {
	var t garden.Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.GardenID, &t.AssignedTo, &t.Title, &t.Description,
		&due, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		v := due.Time
		t.DueDate = &v
	}
	return &t, nil
}

func (s *tasks) Create(ctx context.Context, t *garden.Task) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = garden.TaskStatusPending
	}
	_, err := s.db.ExecContext(ctx, `
		insert into tasks(id, garden_id, assigned_to, title, description, due_date, status,
			created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.GardenID, t.AssignedTo, t.Title, t.Description, t.DueDate, t.Status,
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *tasks) FindByID(ctx context.Context, id string) (*garden.Task, error) {
	row := s.db.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id=$1`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err, "Task")
	}
	return t, nil
}

func (s *tasks) List(ctx context.Context, f garden.TaskFilter) ([]*garden.Task, error) {
	var where []string
	var args []any
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		where = append(where, "assigned_to=$"+strconv.Itoa(len(args)))
	}
	if f.GardenID != "" {
		args = append(args, f.GardenID)
		where = append(where, "garden_id=$"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status=$"+strconv.Itoa(len(args)))
	}
	query := `select ` + taskColumns + ` from tasks`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by status asc, due_date asc nulls last"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *tasks) Update(ctx context.Context, id string, patch garden.TaskPatch) (*garden.Task, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.DueDate.Set {
		if patch.DueDate.Null {
			sets = append(sets, "due_date=null")
		} else {
			add("due_date", patch.DueDate.Value)
		}
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := `update tasks set ` + strings.Join(sets, ", ") +
		` where id=$` + strconv.Itoa(len(args)) + ` returning ` + taskColumns

	row := s.db.QueryRowContext(ctx, query, args...)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err, "Task")
	}
	return t, nil
}

func (s *tasks) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "Task")
	}
	return nil
}
