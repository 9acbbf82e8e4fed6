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

type events struct {
	db *sql.DB
}

const eventColumns = `id, garden_id, created_by, title, type, description, date,
	start_time, end_time, location, max_participants, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*garden.Event, error) {
	var e garden.Event
	var location sql.NullString
	var maxParticipants sql.NullInt64
	err := row.Scan(&e.ID, &e.GardenID, &e.CreatedBy, &e.Title, &e.Type, &e.Description,
		&e.Date, &e.StartTime, &e.EndTime, &location, &maxParticipants, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		v := location.String
		e.Location = &v
	}
	if maxParticipants.Valid {
		v := int(maxParticipants.Int64)
		e.MaxParticipants = &v
	}
	return &e, nil
}

func (s *events) Create(ctx context.Context, e *garden.Event) error {
	if e.ID == "" {
		e.ID = ids.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into events(id, garden_id, created_by, title, type, description, date,
			start_time, end_time, location, max_participants, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.GardenID, e.CreatedBy, e.Title, e.Type, e.Description, e.Date,
		e.StartTime, e.EndTime, e.Location, e.MaxParticipants, e.CreatedAt)
	return err
}

func (s *events) FindByID(ctx context.Context, id string) (*garden.Event, error) {
	row := s.db.QueryRowContext(ctx, `select `+eventColumns+` from events where id=$1`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, notFound(err, "Event")
	}
	return e, nil
}

func (s *events) List(ctx context.Context, f garden.EventFilter) ([]*garden.Event, error) {
	var where []string
	var args []any
	if f.GardenID != "" {
		args = append(args, f.GardenID)
		where = append(where, "garden_id=$"+strconv.Itoa(len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, "type=$"+strconv.Itoa(len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, "date>=$"+strconv.Itoa(len(args)))
	}
	query := `select ` + eventColumns + ` from events`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by date asc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *events) Update(ctx context.Context, id string, patch garden.EventPatch) (*garden.Event, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.Location.Set {
		if patch.Location.Null {
			sets = append(sets, "location=null")
		} else {
			add("location", patch.Location.Value)
		}
	}
	if patch.MaxParticipants.Set {
		if patch.MaxParticipants.Null {
			sets = append(sets, "max_participants=null")
		} else {
			add("max_participants", patch.MaxParticipants.Value)
		}
	}
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `update events set ` + strings.Join(sets, ", ") +
		` where id=$` + strconv.Itoa(len(args)) + ` returning ` + eventColumns

	row := s.db.QueryRowContext(ctx, query, args...)
	e, err := scanEvent(row)
	if err != nil {
		return nil, notFound(err, "Event")
	}
	return e, nil
}

func (s *events) Register(ctx context.Context, eventID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into event_registrations(event_id, user_id) values ($1, $2)
	`, eventID, userID)
	return translateUnique(err, "Already registered for this event")
}

func (s *events) Unregister(ctx context.Context, eventID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from event_registrations where event_id=$1 and user_id=$2
	`, eventID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "Registration")
	}
	return nil
}

func (s *events) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from event_registrations where event_id=$1`, eventID).Scan(&n)
	return n, err
}
