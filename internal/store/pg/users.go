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

type users struct {
	db *sql.DB
}

const userColumns = `id, email, password_hash, name, role, address, zipcode, phone,
	is_active, is_online, last_seen, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*garden.User, error) {
	var u garden.User
	var lastSeen sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.Address, &u.Zipcode, &u.Phone,
		&u.IsActive, &u.IsOnline, &lastSeen, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		u.LastSeen = &t
	}
	return &u, nil
}

func (s *users) Create(ctx context.Context, u *garden.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, password_hash, name, role, address, zipcode, phone,
			is_active, is_online, created_at, updated_at)
		values ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.Address, u.Zipcode, u.Phone,
		u.IsActive, u.IsOnline, u.CreatedAt, u.UpdatedAt)
	return translateUnique(err, "User already exists")
}

func (s *users) FindByID(ctx context.Context, id string) (*garden.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *users) FindByEmail(ctx context.Context, email string) (*garden.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, strings.ToLower(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *users) List(ctx context.Context, f garden.UserFilter) ([]*garden.User, error) {
	query := `select ` + userColumns + ` from users where is_active`
	var args []any
	if f.Role != "" {
		args = append(args, f.Role)
		query += ` and role=$1`
	}
	query += ` order by created_at desc`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*garden.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *users) UpdateProfile(ctx context.Context, id string, patch garden.ProfilePatch) (*garden.User, error) {
	args := []any{id}
	var sets []string
	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	add("name", patch.Name)
	add("phone", patch.Phone)
	add("zipcode", patch.Zipcode)
	add("address", patch.Address)
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at=now()")
	query := `update users set ` + strings.Join(sets, ", ") +
		` where id=$1 returning ` + userColumns
	row := s.db.QueryRowContext(ctx, query, args...)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *users) AdminIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id from users where role='Admin' and is_active order by id`)
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

func (s *users) SetPresence(ctx context.Context, id string, online bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set is_online=$2, last_seen=$3, updated_at=$3 where id=$1
	`, id, online, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "User")
	}
	return nil
}
