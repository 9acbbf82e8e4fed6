package pg

import (
	"context"
	"database/sql"
	"time"

	"grow104.org/internal/garden"
	"grow104.org/internal/ids"
)

type gardens struct {
	db *sql.DB
}

const gardenColumns = `id, name, address, zipcode, owner_id, status, created_at`

func scanGarden(row interface{ Scan(...any) error }) (*garden.Garden, error) {
	var g garden.Garden
	err := row.Scan(&g.ID, &g.Name, &g.Address, &g.Zipcode, &g.OwnerID, &g.Status, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *gardens) Create(ctx context.Context, g *garden.Garden) error {
	if g.ID == "" {
		g.ID = ids.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Status == "" {
		g.Status = garden.GardenStatusActive
	}
	_, err := s.db.ExecContext(ctx, `
		insert into gardens(id, name, address, zipcode, owner_id, status, created_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.Name, g.Address, g.Zipcode, g.OwnerID, g.Status, g.CreatedAt)
	return translateUnique(err, "A garden already exists at this address")
}

func (s *gardens) FindByID(ctx context.Context, id string) (*garden.Garden, error) {
	row := s.db.QueryRowContext(ctx, `select `+gardenColumns+` from gardens where id=$1`, id)
	g, err := scanGarden(row)
	if err != nil {
		return nil, notFound(err, "Garden")
	}
	return g, nil
}

func (s *gardens) FindByAddress(ctx context.Context, address string) (*garden.Garden, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+gardenColumns+` from gardens where lower(address)=lower($1)`, address)
	g, err := scanGarden(row)
	if err != nil {
		return nil, notFound(err, "Garden")
	}
	return g, nil
}

func (s *gardens) List(ctx context.Context) ([]*garden.Garden, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+gardenColumns+` from gardens
		where status='active' order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.Garden
	for rows.Next() {
		g, err := scanGarden(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type memberships struct {
	db *sql.DB
}

func (s *memberships) AddGardener(ctx context.Context, gardenID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into garden_gardeners(garden_id, user_id) values ($1, $2)
	`, gardenID, userID)
	return translateUnique(err, "User is already assigned to this garden")
}

func (s *memberships) AddVolunteer(ctx context.Context, gardenID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into garden_volunteers(garden_id, user_id) values ($1, $2)
	`, gardenID, userID)
	return translateUnique(err, "User is already assigned to this garden")
}

func (s *memberships) IsGardener(ctx context.Context, userID, gardenID string) (bool, error) {
	return s.exists(ctx, `select 1 from garden_gardeners where user_id=$1 and garden_id=$2`, userID, gardenID)
}

func (s *memberships) IsVolunteer(ctx context.Context, userID, gardenID string) (bool, error) {
	return s.exists(ctx, `select 1 from garden_volunteers where user_id=$1 and garden_id=$2`, userID, gardenID)
}

func (s *memberships) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *memberships) GardenIDsForGardener(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select garden_id from garden_gardeners where user_id=$1 order by garden_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *memberships) GardenerIDs(ctx context.Context, gardenID string) ([]string, error) {
	return s.userIDs(ctx,
		`select user_id from garden_gardeners where garden_id=$1 order by user_id`, gardenID)
}

func (s *memberships) VolunteerIDs(ctx context.Context, gardenID string) ([]string, error) {
	return s.userIDs(ctx,
		`select user_id from garden_volunteers where garden_id=$1 order by user_id`, gardenID)
}

func (s *memberships) userIDs(ctx context.Context, query, gardenID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, gardenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *memberships) CountGardeners(ctx context.Context, gardenID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from garden_gardeners where garden_id=$1`, gardenID).Scan(&n)
	return n, err
}
